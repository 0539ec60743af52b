// Package hcl provides the HCL implementation of config.Loader. It parses
// struct declaration files, translates `type` expressions into cty types and
// keeps `default` expressions unevaluated so the schema compiler and the
// runtime builder can evaluate them against resolved fields.
//
// A declaration file looks like this:
//
//	package = "greeting"
//
//	struct "Foo" {
//	  required "hi" {
//	    type = string
//	  }
//	  defaulted "bye" {
//	    type    = string
//	    default = ""
//	  }
//	  private "private" {
//	    type    = string
//	    default = ""
//	  }
//	}
package hcl
