//go:build !fyne

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"fmt"

	applog "penpath/internal/log"
)

// Run opens the pen canvas. Without the fyne tag only the Controller is
// compiled, which keeps tests and the replay CLI headless.
func Run(env Env) error {
	if env.Session != nil {
		applog.WithComponent("ui").Warn("editor requested in a headless build")
	}
	return fmt.Errorf("pen canvas not built into this binary; rebuild with: go build -tags fyne ./cmd/penpath")
}
