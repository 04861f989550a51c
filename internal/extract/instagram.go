package extract

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/nao1215/egocrawl/internal/model"
)

// InstagramFollowingCount reads the declared following count of self from its
// profile page. It returns model.UnknownCount when the page has no following
// link, which is the case for private accounts.
func InstagramFollowingCount(r io.Reader, self model.ProfileID) (int, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return 0, fmt.Errorf("failed to parse profile page: %w", err)
	}

	username := model.Username(self)
	if username == "" {
		return model.UnknownCount, nil
	}

	link := findFirst(doc, func(n *html.Node) bool {
		return n.Data == "a" && isFollowingHref(getAttr(n, "href"), username)
	})
	if link == nil {
		return model.UnknownCount, nil
	}

	candidates := []string{textContent(link)}
	for _, span := range findAll(link, isElement("span")) {
		candidates = append(candidates, textContent(span))
	}
	for _, c := range candidates {
		if strings.ContainsAny(c, "0123456789") {
			return ParseCompactNumber(c), nil
		}
	}
	return 0, nil
}

// InstagramFollowingHref is the link that opens the following modal of self.
func InstagramFollowingHref(self model.ProfileID) string {
	return "/" + model.Username(self) + "/following/"
}

func isFollowingHref(href, username string) bool {
	href = strings.ToLower(strings.TrimSuffix(href, "/"))
	return strings.HasSuffix(href, "/"+strings.ToLower(username)+"/following")
}

// Instagram extracts the accounts listed in the markup of the following
// modal. Only links to a single path segment are accounts; the display name
// is the second span[dir=auto] of a row, or the handle when there is none.
func Instagram(r io.Reader, self model.ProfileID) ([]model.Neighbor, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse following modal: %w", err)
	}

	root := findFirst(doc, func(n *html.Node) bool {
		return n.Data == "div" && getAttr(n, "role") == "dialog"
	})
	if root == nil {
		root = doc
	}

	neighbors := []model.Neighbor{}
	seen := make(map[model.ProfileID]bool)
	for _, a := range findAll(root, isInstagramRowLink) {
		id, err := model.SiteInstagram.Normalize(getAttr(a, "href"))
		if err != nil || id == self || seen[id] || !isProfileRoot(id) {
			continue
		}

		spans := findAll(a, func(n *html.Node) bool {
			return n.Data == "span" && getAttr(n, "dir") == "auto"
		})
		var handle, name string
		if len(spans) > 0 {
			handle = textContent(spans[0])
		}
		if len(spans) > 1 {
			name = textContent(spans[1])
		}
		if name == "" {
			name = handle
		}
		if name == "" {
			name = model.Username(id)
		}

		seen[id] = true
		neighbors = append(neighbors, model.Neighbor{ID: id, Name: name})
	}

	return neighbors, nil
}

func isInstagramRowLink(n *html.Node) bool {
	return n.Data == "a" && getAttr(n, "role") == "link" && usableHref(getAttr(n, "href"))
}
