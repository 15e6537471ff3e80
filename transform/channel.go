package transform

import (
	"crypto/sha256"
	"encoding/hex"
)

// hashLen is the number of hex digits of the body digest carried in a
// channel name. Collisions at this scale are accepted as negligible.
const hashLen = 12

// replySuffix is appended to a channel to form its asynchronous reply
// channel.
const replySuffix = "-reply"

// Channel derives the stable message-channel identifier for one export:
//
//	<fileBaseName>:<nameSegment>:<hash12>
//
// The digest is SHA-256 over exactly the original slice of the function's
// own span, truncated to 12 hex characters. Identical inputs yield the
// identical channel string across processes and machines; main-side and
// renderer-side compiles never communicate, so this determinism is what
// makes the two halves agree.
func Channel(fileBase, nameSegment string, body []byte) string {
	sum := sha256.Sum256(body)
	return fileBase + ":" + nameSegment + ":" + hex.EncodeToString(sum[:])[:hashLen]
}

// ReplyChannel returns the reply pathway for a channel.
func ReplyChannel(channel string) string {
	return channel + replySuffix
}

// nameSegment returns the channel's human-readable segment: the fixed
// literal "default" for default exports, the export identifier otherwise.
func nameSegment(fn ExportedFunction) string {
	if fn.IsDefault {
		return "default"
	}
	return fn.Name
}
