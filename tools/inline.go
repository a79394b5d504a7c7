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

package tools

import (
	"io"
	"io/ioutil"
	"path/filepath"
	"regexp"

	"github.com/Comcast/rove/util"
)

// inlinePat finds '%inline("NAME")' along with the text before it.
var inlinePat = regexp.MustCompile(`(?s)(.*?)%inline *\("([^"]*)"\)`)

// Inline replaces each '%inline("NAME")' in bs with f(NAME).
//
// A plan file can use this to pull (say) a shared guard source or a
// doc fragment out of a neighboring file.
func Inline(bs []byte, f func(string) ([]byte, error)) ([]byte, error) {
	acc := make([]byte, 0, len(bs))
	for {
		part := inlinePat.FindSubmatch(bs)
		if part == nil {
			return append(acc, bs...), nil
		}
		bs = bs[len(part[0]):]

		acc = append(acc, part[1]...)

		name := string(part[2])
		replacement, err := f(name)
		if err != nil {
			return nil, err
		}
		util.Logf("inlining %s (%d bytes)", name, len(replacement))
		acc = append(acc, replacement...)
	}
}

// ReadFileWithInlines reads the file and then expands its
// '%inline("NAME")' directives, resolving NAME relative to the
// file's directory.
func ReadFileWithInlines(filename string) ([]byte, error) {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Inline(bs, fileFinder(filepath.Dir(filename)))
}

// ReadAllWithInlines reads in and then expands '%inline("NAME")'
// directives, resolving NAME relative to the given directory.
func ReadAllWithInlines(in io.Reader, dir string) ([]byte, error) {
	bs, err := ioutil.ReadAll(in)
	if err != nil {
		return nil, err
	}
	return Inline(bs, fileFinder(dir))
}

func fileFinder(dir string) func(string) ([]byte, error) {
	return func(name string) ([]byte, error) {
		return ioutil.ReadFile(filepath.Join(dir, name))
	}
}
