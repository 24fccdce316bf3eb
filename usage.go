package nxtvk

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
)

// usageTracker holds the single access pattern a resource was last
// transitioned to. It is pure bookkeeping: emitting the matching barrier is the
// owning resource's job, and the two must always be done as a pair (see
// Buffer.TransitionUsage and Texture.TransitionUsage).
type usageTracker[U gputypes.BufferUsage | gputypes.TextureUsage] struct {
	usage U
}

// CurrentUsage returns the tracked usage tag.
func (u *usageTracker[U]) CurrentUsage() U {
	return u.usage
}

// CommitUsage records to as the current usage. It has no native side effect.
func (u *usageTracker[U]) CommitUsage(to U) {
	u.usage = to
}

var bufferUsageNames = []struct {
	name  string
	usage gputypes.BufferUsage
}{
	{"map_read", gputypes.BufferUsageMapRead},
	{"map_write", gputypes.BufferUsageMapWrite},
	{"copy_src", gputypes.BufferUsageCopySrc},
	{"copy_dst", gputypes.BufferUsageCopyDst},
	{"index", gputypes.BufferUsageIndex},
	{"vertex", gputypes.BufferUsageVertex},
	{"uniform", gputypes.BufferUsageUniform},
	{"storage", gputypes.BufferUsageStorage},
}

var textureUsageNames = []struct {
	name  string
	usage gputypes.TextureUsage
}{
	{"copy_src", gputypes.TextureUsageCopySrc},
	{"copy_dst", gputypes.TextureUsageCopyDst},
	{"sampled", gputypes.TextureUsageTextureBinding},
	{"storage", gputypes.TextureUsageStorageBinding},
	{"render_attachment", gputypes.TextureUsageRenderAttachment},
}

// ParseBufferUsage parses names such as "copy_dst" or "vertex|uniform".
// The empty string is no usage.
func ParseBufferUsage(s string) (gputypes.BufferUsage, error) {
	var usage gputypes.BufferUsage
	for _, part := range splitUsage(s) {
		found := false
		for _, n := range bufferUsageNames {
			if n.name == part {
				usage |= n.usage
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown buffer usage %q", part)
		}
	}
	return usage, nil
}

// ParseTextureUsage parses names such as "sampled" or "copy_dst|render_attachment".
func ParseTextureUsage(s string) (gputypes.TextureUsage, error) {
	var usage gputypes.TextureUsage
	for _, part := range splitUsage(s) {
		found := false
		for _, n := range textureUsageNames {
			if n.name == part {
				usage |= n.usage
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown texture usage %q", part)
		}
	}
	return usage, nil
}

func splitUsage(s string) []string {
	var parts []string
	for _, p := range strings.Split(s, "|") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
