// Package fieldproxy builds live proxies over struct instances.
// A proxy exposes every declared field, exported or not, as a named property
// with a getter and setter that read and write the field on the original instance.
package fieldproxy
