package directline

import "net/url"

// resolveConversationURL derives the per-hop request URL from the
// strategy's baseURL and the known conversation id (empty before the first
// activity arrives). It resolves "conversations/{id}" as a relative
// reference against baseURL, then copies baseURL's query string and
// fragment onto the result verbatim — so a baseURL of
// "http://host/?api=start#1" combined with conversation id "c-1" yields
// "http://host/conversations/c-1?api=start#1", and an empty id yields a
// trailing-slash "http://host/conversations/?api=start#1".
func resolveConversationURL(baseURL, conversationID string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}

	ref, err := url.Parse("conversations/" + conversationID)
	if err != nil {
		return "", err
	}

	resolved := base.ResolveReference(ref)
	resolved.RawQuery = base.RawQuery
	resolved.Fragment = base.Fragment
	resolved.RawFragment = base.RawFragment

	return resolved.String(), nil
}
