/* Copyright 2018 Comcast Cable Communications Management, LLC
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

// Package testutil has little helpers that make test fixtures and
// failure messages less noisy.  Tests usually dot-import it.
package testutil

import (
	"encoding/json"
	"fmt"
	"log"
)

// JS renders x as JSON for a failure message.  If x won't marshal,
// JS falls back to %#v so the message still says something.
func JS(x interface{}) string {
	if bs, err := json.Marshal(&x); err == nil {
		return string(bs)
	} else {
		log.Printf("warning: testutil.JS %s for %#v", err, x)
	}
	return fmt.Sprintf("%#v", x)
}

// Dwimjs parses a string (or bytes) as JSON and panics if that
// fails, which is what a test fixture wants.  Anything that isn't a
// string passes through untouched.
//
// See https://en.wikipedia.org/wiki/DWIM.
func Dwimjs(x interface{}) interface{} {
	switch vv := x.(type) {
	case []byte:
		return Dwimjs(string(vv))
	case string:
		var v interface{}
		if err := json.Unmarshal([]byte(vv), &v); err != nil {
			panic(err)
		}
		return v
	}
	return x
}
