// SPDX-License-Identifier: MIT
package main

import "github.com/tmoxon/uni-hook/cmd/unihook"

// execute is overridable in tests.
var execute = unihook.Execute

func main() {
	execute()
}
