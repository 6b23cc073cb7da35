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

import (
	"fmt"
	"net/url"
	"strings"
)

// ShareLine is the terse one-line score used for text and mail.
func ShareLine(away, home string, g GameState) string {
	half := "Top"
	if !g.IsTopHalf {
		half = "Bottom"
	}
	return fmt.Sprintf("Current Score: %s %d, %s %d (%s %d)", away, g.AwayScore, home, g.HomeScore, half, g.Inning)
}

// ShareTarget is an external channel the share text can be handed to.
type ShareTarget string

const (
	ShareSMS       ShareTarget = "text"
	ShareEmail     ShareTarget = "email"
	ShareClipboard ShareTarget = "clipboard"
)

// ShareEmailSubject is the subject line of mailto links.
const ShareEmailSubject = "Baseball Update"

// ShareURI returns what the presentation layer hands to the target: an sms:
// or mailto: URI, or the text itself for the clipboard.
func ShareURI(target ShareTarget, text string) (string, error) {
	switch target {
	case ShareSMS:
		return "sms:?&body=" + encodeComponent(text), nil
	case ShareEmail:
		return "mailto:?subject=" + encodeComponent(ShareEmailSubject) + "&body=" + encodeComponent(text), nil
	case ShareClipboard:
		return text, nil
	}
	return "", &ValidationError{Field: "target", Err: fmt.Errorf("unknown share target %q", target)}
}

// componentEscapes undoes QueryEscape for the characters a URI component
// keeps literal.
var componentEscapes = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeComponent escapes like a URI component: spaces become %20, not +.
func encodeComponent(s string) string {
	return componentEscapes.Replace(url.QueryEscape(s))
}
