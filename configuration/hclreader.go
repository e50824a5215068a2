// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"io/ioutil"

	"github.com/hashicorp/hcl"
)

// decode a HCL file, fields are matched by their hcl struct tags
func parseHCLFile(fileName string, config interface{}) error {
	b, err := ioutil.ReadFile(fileName)
	if err != nil {
		return err
	}
	return hcl.Unmarshal(b, config)
}
