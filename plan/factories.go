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

package plan

import (
	"fmt"

	"github.com/Comcast/rove/core"
)

// BaseFactories returns generic factories for plans that don't have
// their own Go constructors:
//
//	record   the argument map itself
//	sum      the numeric sum of the argument values
func BaseFactories() map[string]core.Factory {
	return map[string]core.Factory{
		"record": recordFactory,
		"sum":    sumFactory,
	}
}

func recordFactory(args map[string]interface{}) (interface{}, error) {
	acc := make(map[string]interface{}, len(args))
	for k, v := range args {
		acc[k] = v
	}
	return acc, nil
}

func sumFactory(args map[string]interface{}) (interface{}, error) {
	var sum float64
	for k, v := range args {
		switch vv := v.(type) {
		case float64:
			sum += vv
		case float32:
			sum += float64(vv)
		case int:
			sum += float64(vv)
		case int64:
			sum += float64(vv)
		default:
			return nil, fmt.Errorf("'%s' value %#v isn't numeric", k, v)
		}
	}
	return sum, nil
}
