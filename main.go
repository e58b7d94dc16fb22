// Copyright 2021 Snowfork
// SPDX-License-Identifier: LGPL-3.0-only

package main

import (
	"github.com/snowfork/messagebridge/cmd"
)

func main() {
	cmd.Execute()
}
