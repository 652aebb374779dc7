package automerge

import (
	"github.com/squashbot/squashbot/internal/logfields"
)

var (
	logFieldEventIgnored = logfields.Event("github_event_ignored")

	logEventMergeAttempt  = logfields.Event("pull_request_merge_attempt")
	logEventMerged        = logfields.Event("pull_request_merged")
	logEventMergeFailed   = logfields.Event("pull_request_merge_failed")
	logEventUpdateAttempt = logfields.Event("pull_request_update_attempt")
	logEventUpdated       = logfields.Event("pull_request_update_triggered")
	logEventUpdateFailed  = logfields.Event("pull_request_update_failed")
)
