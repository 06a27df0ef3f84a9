// Package config resolves ocwrap run-time configuration from layered sources.
//
// Resolution starts from schema defaults and overlays, field by field, a
// user-scoped TOML file, a project-scoped TOML file, and finally environment
// variables. Later layers win per field; a layer that omits a field leaves
// the previous layer's value untouched. Every field is validated after the
// merge (type coercion, bounds, path expansion) and carries the source layer
// that supplied its final value.
//
// The resolved value is immutable. Always obtain settings through Load so
// downstream code receives sanitized absolute paths and attributable errors.
package config
