// Package yaml provides a YAML implementation of config.Loader for teams that
// keep declarations next to other YAML configuration. It produces the same
// model as the HCL loader; `type` and `default` values are strings holding
// HCL expressions:
//
//	package: greeting
//	structs:
//	  - name: Foo
//	    fields:
//	      - {name: hi, kind: required, type: string}
//	      - {name: bye, kind: defaulted, type: string, default: '""'}
//	      - {name: private, kind: private, type: string, default: '""'}
package yaml
