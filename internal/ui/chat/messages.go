// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/maanis/voxa/internal/config"
	"github.com/maanis/voxa/internal/model"
)

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamUpdateMsg carries the assistant message after a change.
type StreamUpdateMsg struct {
	Message model.Message
}

// StreamDoneMsg signals the end of an exchange that did not fail. Canceled
// is set when the user stopped it; the partial reply is kept.
type StreamDoneMsg struct {
	Message  model.Message
	Canceled bool
}

// StreamErrorMsg signals a failed exchange. Message holds the fallback reply
// when the failure happened after the request was accepted.
type StreamErrorMsg struct {
	Message model.Message
	Err     error
}

// =============================================================================
// SERVER MESSAGES
// =============================================================================

// ServerStatusMsg reports the result of a server reachability check.
type ServerStatusMsg struct {
	Version string
	Err     error
}

// =============================================================================
// CONFIG MESSAGES
// =============================================================================

// ConfigReloadedMsg is sent when the config file changed on disk.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}

// =============================================================================
// UI MESSAGES
// =============================================================================

// noticeMsg shows a transient status bar notice.
type noticeMsg struct {
	Text string
}

// clearNoticeMsg clears the notice with the given sequence number, if it is
// still the one shown.
type clearNoticeMsg struct {
	Seq int
}
