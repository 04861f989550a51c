package extract

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/nao1215/egocrawl/internal/model"
)

// facebookCardStyle marks the container of the friends tab.
const facebookCardStyle = "--card-corner-radius"

// Facebook extracts the friends of self from the markup of its friends tab.
//
// The friends list counts as visible when the tab container links to more
// than one friends page. A hidden list yields no neighbors and
// model.UnknownCount. Links back to self and links that are not profiles are
// dropped; a friend listed twice is kept once.
func Facebook(r io.Reader, self model.ProfileID) (model.FetchResult, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return model.FetchResult{}, fmt.Errorf("failed to parse friends page: %w", err)
	}

	result := model.FetchResult{
		Neighbors:     []model.Neighbor{},
		DeclaredCount: model.UnknownCount,
	}

	tab := findFirst(doc, func(n *html.Node) bool {
		return strings.Contains(getAttr(n, "style"), facebookCardStyle)
	})
	if tab == nil {
		tab = doc
	}

	friendsLinks := findAll(tab, func(n *html.Node) bool {
		return n.Data == "a" && strings.Contains(getAttr(n, "href"), "friends")
	})
	if len(friendsLinks) < 2 {
		return result, nil
	}

	result.DeclaredCount = facebookFriendCount(friendsLinks)

	seen := make(map[model.ProfileID]bool)
	for _, a := range findAll(tab, isFriendAnchor) {
		id, err := model.SiteFacebook.Normalize(getAttr(a, "href"))
		if err != nil || id == self || seen[id] || !isProfileRoot(id) {
			continue
		}

		span := findFirst(a, isElement("span"))
		if span == nil {
			continue
		}

		seen[id] = true
		result.Neighbors = append(result.Neighbors, model.Neighbor{
			ID:   id,
			Name: textContent(span),
		})
	}

	return result, nil
}

// isFriendAnchor matches the focusable anchors of friend cards.
func isFriendAnchor(n *html.Node) bool {
	return n.Data == "a" && getAttr(n, "tabindex") == "0" && usableHref(getAttr(n, "href"))
}

// facebookFriendCount reads the count from the first friends link whose text
// starts with a number, such as "1.2K friends".
func facebookFriendCount(links []*html.Node) int {
	for _, a := range links {
		text := textContent(a)
		fields := strings.Fields(text)
		if len(fields) < 2 || !strings.ContainsAny(fields[0], "0123456789") {
			continue
		}
		return ParseCompactNumber(fields[0])
	}
	return model.UnknownCount
}

// isProfileRoot reports whether id is a profile page rather than a sub-page
// such as /name/photos.
func isProfileRoot(id model.ProfileID) bool {
	u, err := url.Parse(string(id))
	if err != nil {
		return false
	}
	path := strings.Trim(u.Path, "/")
	return path != "" && !strings.Contains(path, "/")
}
