// Package request parses raw resource request strings into a structured
// Request.
//
// A request string carries zero or more inline directives in front of the
// resource address, separated by '!':
//
//	[directive[=value]!]*address
//
// Recognized directives are applied left to right:
//
//	async          marks the resource as loadable asynchronously
//	timeout=<ms>   overrides the load deadline; ignored unless a non-negative integer
//
// The timeout value must be a whole decimal number of milliseconds. Values
// with trailing text, such as "500ms" or "1.5", are not truncated to their
// leading digits; they are ignored and the default timeout applies.
//
// Unknown directives are ignored. The address is always the final segment.
//
// The raw string, directives included, stays the identity of the request. Two
// strings resolving to the same address with different directive text are
// different requests.
package request
