/*
 *    Copyright 2025 Jeff Galyan
 *
 *    Licensed under the Apache License, Version 2.0 (the "License");
 *    you may not use this file except in compliance with the License.
 *    You may obtain a copy of the License at
 *
 *        http://www.apache.org/licenses/LICENSE-2.0
 *
 *    Unless required by applicable law or agreed to in writing, software
 *    distributed under the License is distributed on an "AS IS" BASIS,
 *    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *    See the License for the specific language governing permissions and
 *    limitations under the License.
 */

package talus

// Handler is the single abstraction for endpoints, middleware, and
// sub-pipelines. A middleware that wants "around" semantics calls
// ctrl.CallNext in the middle of its own Handle; one that wants pure
// "before" semantics just returns, and FlowCtrl's own loop advances.
type Handler interface {
	Handle(req *Request, depot *Depot, res *Response, ctrl *FlowCtrl)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(req *Request, depot *Depot, res *Response, ctrl *FlowCtrl)

// Handle implements Handler.
func (f HandlerFunc) Handle(req *Request, depot *Depot, res *Response, ctrl *FlowCtrl) {
	f(req, depot, res, ctrl)
}

// Chain is a tuple of handlers run in order, stopping as soon as the
// response commits or one member calls SkipRest. It supports ergonomic
// grouping of handlers without allocating a sub-router, standing in for
// the arity-N tuple-of-handlers impls the source generates by macro.
type Chain []Handler

// Handle implements Handler by running the chain to completion against a
// FlowCtrl of its own, then propagating a SkipRest outward so an enclosing
// chain also stops.
func (c Chain) Handle(req *Request, depot *Depot, res *Response, outer *FlowCtrl) {
	inner := newFlowCtrl(c)
	inner.Run(req, depot, res)
	if inner.ceased {
		outer.SkipRest()
	}
}

// FlowCtrl is the execution primitive threaded through a handler chain. A
// single FlowCtrl owns the chain and a cursor into it; both Service's outer
// drive loop and a handler's own CallNext call share that one cursor, which
// is what lets "before" handlers (never call CallNext) and "around"
// handlers (call CallNext mid-body) interleave correctly without either
// double-invoking or skipping a handler.
type FlowCtrl struct {
	chain  []Handler
	index  int
	ceased bool
}

// newFlowCtrl builds a FlowCtrl for the given ordered handler chain,
// positioned before the first handler.
func newFlowCtrl(chain []Handler) *FlowCtrl {
	return &FlowCtrl{chain: chain, index: 0}
}

// Run drives the chain to completion: it keeps calling CallNext until the
// response commits, SkipRest is called, or the chain is exhausted. This is
// Service's entire middleware-execution loop (spec §4.4); "around" and
// "before" handlers are indistinguishable from here; each handler in the
// chain is invoked exactly once regardless of which style it uses.
func (f *FlowCtrl) Run(req *Request, depot *Depot, res *Response) {
	for !f.ceased && !res.Committed() && f.index < len(f.chain) {
		f.CallNext(req, depot, res)
	}
}

// CallNext runs the remaining handlers in the chain, in order, until the
// chain is exhausted, the response is committed, or SkipRest has been
// called; it is a no-op if any of those already holds. The index is
// advanced before each handler is invoked, so a handler that calls
// CallNext itself resumes the chain from its successor, and Run's own loop
// never re-invokes a handler that ran via a nested CallNext call.
func (f *FlowCtrl) CallNext(req *Request, depot *Depot, res *Response) {
	for !f.ceased && !res.Committed() && f.index < len(f.chain) {
		h := f.chain[f.index]
		f.index++
		h.Handle(req, depot, res, f)
	}
}

// SkipRest marks the chain terminated: neither further CallNext calls nor
// Run's own loop will invoke another handler.
func (f *FlowCtrl) SkipRest() { f.ceased = true }

// IsCeased reports whether SkipRest has been called on this FlowCtrl.
func (f *FlowCtrl) IsCeased() bool { return f.ceased }
