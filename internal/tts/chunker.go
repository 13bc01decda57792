// Package tts turns free-form request text into synthesizable utterances and
// maps each utterance to a streamable audio URL. Everything here is pure; no
// network calls are made until playback fetches the URL.
package tts

import "strings"

// ChunkLimit is the longest utterance the synthesis service accepts.
const ChunkLimit = 200

// Chunk splits text into an ordered sequence of non-empty utterances, each
// no longer than ChunkLimit. Text is cut on commas and periods, trimmed, and
// consecutive fragments are greedily re-joined with a comma while the result
// stays under the limit, so natural speech groupings survive with as few
// synthesis calls as possible.
//
// A single fragment longer than the limit is hard-split at the last space
// at-or-before the limit. If such a fragment contains no space within the
// limit the whole call returns nil: the caller treats that as nothing
// playable rather than cutting mid-word.
func Chunk(text string) []string {
	fragments := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '.'
	})

	var utterances []string
	for _, frag := range fragments {
		frag = strings.TrimSpace(frag)
		if frag == "" {
			continue
		}

		if n := len(utterances); n > 0 && len(utterances[n-1])+len(frag) < ChunkLimit {
			utterances[n-1] += "," + frag
			continue
		}

		for {
			frag = strings.TrimSpace(frag)
			if len(frag) <= ChunkLimit {
				break
			}
			cut := strings.LastIndex(frag[:ChunkLimit], " ")
			if cut == -1 {
				return nil
			}
			utterances = append(utterances, strings.TrimSpace(frag[:cut]))
			frag = frag[cut:]
		}

		if frag != "" {
			utterances = append(utterances, frag)
		}
	}
	return utterances
}
