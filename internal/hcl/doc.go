// Package hcl provides the concrete HCL implementation of the
// configuration Loader interface defined in the config package. It is
// responsible for file parsing, HCL-to-model translation, defaulting,
// and CTY-to-Go value binding.
package hcl
