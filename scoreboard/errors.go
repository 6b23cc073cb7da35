// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package scoreboard

import "errors"

var (
	ErrPlayerRequired       = errors.New("player name is required")
	ErrPlayTypeRequired     = errors.New("play type is required")
	ErrUnknownPlayType      = errors.New("unknown play type")
	ErrLocationRequired     = errors.New("location is required for this play type")
	ErrUnknownTeam          = errors.New("unknown team")
	ErrConfirmationRequired = errors.New("confirmation required")
)

// ValidationError is a user-facing rejection of an intent. The operation
// was aborted and nothing was changed or persisted.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
