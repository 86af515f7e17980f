// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command uboc generates the GLSL declarations of a UBO from a YAML
// definition of its inputs.
package main

import (
	"cogentcore.org/core/cli"
	"cogentcore.org/renderpipeline/ubogen"
)

func main() {
	opts := cli.DefaultOptions("uboc", "Uboc generates the GLSL declarations of a UBO from a YAML definition of its inputs.")
	cli.Run(opts, &ubogen.Config{}, ubogen.Generate)
}
