package tts

import "net/url"

const (
	synthesisEndpoint = "https://translate.google.com/translate_tts"
	synthesisClient   = "tw-ob"
)

// BuildURL maps one utterance to a URL the synthesis service will stream
// audio for. The utterance is percent-encoded as the q parameter; lang
// selects the target language. No request is made here — resolution happens
// at playback fetch time.
func BuildURL(utterance, lang string) string {
	v := url.Values{}
	v.Set("ie", "UTF-8")
	v.Set("q", utterance)
	v.Set("tl", lang)
	v.Set("client", synthesisClient)
	return synthesisEndpoint + "?" + v.Encode()
}

// BuildURLs resolves every utterance in order.
func BuildURLs(utterances []string, lang string) []string {
	urls := make([]string, len(utterances))
	for i, u := range utterances {
		urls[i] = BuildURL(u, lang)
	}
	return urls
}
