/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pathmodel

import (
	"errors"
	"fmt"
)

// SymmetryTolerance is the allowed deviation of a Symmetric anchor's ctrlIn
// from the exact mirror of ctrlOut.
const SymmetryTolerance = 1e-6

// CheckConsistency validates the structural invariants and returns all
// violations joined, or nil.
func (m *Model) CheckConsistency() error {
	p := m.Path
	if p == nil {
		return nil
	}
	var errs []error
	if len(p.SubPaths) == 0 {
		errs = append(errs, errors.New("path has no subpaths"))
	}
	if p.ActiveID != 0 && p.Active() == nil {
		errs = append(errs, fmt.Errorf("active subpath #%d does not exist", p.ActiveID))
	}
	for _, sp := range p.SubPaths {
		if sp.PathID != p.ID {
			errs = append(errs, fmt.Errorf("subpath #%d points to path #%d, owner is #%d", sp.ID, sp.PathID, p.ID))
		}
		if len(sp.Anchors) == 0 {
			errs = append(errs, fmt.Errorf("subpath #%d is empty", sp.ID))
		}
		if sp.Closed && !sp.Finished {
			errs = append(errs, fmt.Errorf("subpath #%d is closed but not finished", sp.ID))
		}
		if sp.Closed && len(sp.Anchors) < 2 {
			errs = append(errs, fmt.Errorf("subpath #%d is closed with %d anchors", sp.ID, len(sp.Anchors)))
		}
		if !sp.Finished && sp.ID != p.ActiveID {
			errs = append(errs, fmt.Errorf("subpath #%d is open but not active", sp.ID))
		}
		for _, a := range sp.Anchors {
			if a.SubPathID != sp.ID {
				errs = append(errs, fmt.Errorf("anchor #%d points to subpath #%d, owner is #%d", a.ID, a.SubPathID, sp.ID))
			}
			if a.Type == Symmetric && !a.CtrlIn.Pos.Eq(a.CtrlOut.Pos.Mirror(a.Pos), SymmetryTolerance) {
				errs = append(errs, fmt.Errorf("symmetric anchor #%d has unmirrored handles", a.ID))
			}
		}
	}
	return errors.Join(errs...)
}
