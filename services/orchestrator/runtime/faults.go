// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package runtime

// ScriptFault is an uncaught script error surfaced by the page.
type ScriptFault struct {
	Message string
	Source  string
	Line    int
	Column  int
}

// RejectionFault is an unhandled asynchronous rejection. Capturing it
// suppresses the page's default console surfacing.
type RejectionFault struct {
	Reason string
}

// ResourceFault is a failed sub-resource load. These do not bubble, so the
// host captures them at the capturing phase before handing them over.
type ResourceFault struct {
	TagName string // lowercase element tag, e.g. "script", "img", "link"
	URL     string
}

// FaultSource delivers page faults to the interceptor.
//
// The contract is a subscription: every fault on these channels is delivered
// in channel-receive order until the consumer's context ends. Channels are
// closed only on page teardown.
type FaultSource interface {
	ScriptErrors() <-chan ScriptFault
	Rejections() <-chan RejectionFault
	ResourceFailures() <-chan ResourceFault
}
