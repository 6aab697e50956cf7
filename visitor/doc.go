// Package visitor offers a generic callback visitor type and a concurrent
// struct layout cache used to enumerate declared struct fields, exported or not.
package visitor
