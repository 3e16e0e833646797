// Package textutil provides name handling shared by the production stages.
//
// The primary use cases are:
//   - Deriving filesystem-safe names from script segment titles
//   - Building and parsing the NN_<name>.<ext> segment file convention
//   - Producing topic slugs used for project directories and queue dedup
//
// Names are folded to ASCII where possible: diacritics are stripped through
// Unicode decomposition so "Canción" becomes "Cancion".
package textutil
