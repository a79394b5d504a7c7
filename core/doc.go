/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package core provides the gear for enumerating variable bindings
// over trees of expression nodes.
//
// The primary type is Node, and the primary method is Evaluate().  A
// Node is either a leaf that ranges over a domain of values (Variable,
// Constant, External) or a composite that combines the enumerations of
// its children (Product, Derived, Filter).  Evaluate() takes a set of
// upstream Bindings and returns a lazy sequence of Results, each of
// which carries a snapshot of the Bindings extended with this node's
// value, a validity flag, and a provenance link back toward the
// evaluation root.
//
// Enumeration is lazy all the way down.  A Variable's domain is pulled
// one element at a time through a replay.Seq, so an unbounded or
// expensive domain is only consumed as far as some consumer actually
// asks.  Re-evaluating the same tree replays the cached domain in the
// same order, so results are reproducible even when the underlying
// domain source is single-pass.
//
// A host assembles a tree, calls Evaluate on the root with (usually
// empty) initial Bindings, and pulls Results until it has what it
// wants.  Stopping early is the only cancellation mechanism: just stop
// pulling.
package core
