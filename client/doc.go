// Package client calls the Task API through the request pipeline.
//
// [Client.Login] posts credentials without a bearer header and hands the
// resulting session to the goDash Manager. [Client.Dashboard] reads the
// dashboard payload with the current credential; a 401 ends the session in
// the pipeline before the error reaches the caller.
package client
