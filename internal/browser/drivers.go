package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/nao1215/egocrawl/internal/extract"
	"github.com/nao1215/egocrawl/internal/model"
)

// pageDriver loads the connections of profile into page and extracts them.
// It returns the result and the markup it was extracted from.
type pageDriver func(ctx context.Context, s *Session, page *rod.Page, profile model.ProfileID) (model.FetchResult, string, error)

var drivers = map[model.Site]pageDriver{
	model.SiteFacebook:  fetchFacebook,
	model.SiteInstagram: fetchInstagram,
}

const (
	// dialogTimeout bounds waiting for the following link and its modal.
	dialogTimeout = 10 * time.Second

	// topUpAttempts is how often a short following list is scrolled again
	// with a longer delay before it is accepted.
	topUpAttempts = 3
)

// progress is what a scroll step observed. Scrolling is idle while it does
// not change.
type progress struct {
	height int
	items  int
}

// scrollUntilIdle calls step until it reports the same progress maxIdle times
// in a row or maxRounds is reached. A step that sees no items ends scrolling
// at once. delay is waited after every step.
func scrollUntilIdle(ctx context.Context, step func() (progress, error), delay time.Duration, maxIdle, maxRounds int) (int, error) {
	var (
		last   progress
		idle   int
		rounds int
	)
	for idle < maxIdle && rounds < maxRounds {
		rounds++

		p, err := step()
		if err != nil {
			return rounds, err
		}
		if err := sleepCtx(ctx, delay); err != nil {
			return rounds, err
		}
		if p.items == 0 {
			break
		}

		if p == last {
			idle++
			continue
		}
		idle = 0
		last = p
	}
	return rounds, nil
}

// navigate loads url and waits for the load event and the settle delay.
func (s *Session) navigate(ctx context.Context, page *rod.Page, url string) error {
	nav := page.Timeout(s.cfg.NavigationTimeout)
	defer nav.CancelTimeout()

	if err := nav.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := nav.WaitLoad(); err != nil {
		return fmt.Errorf("failed to load %s: %w", url, err)
	}
	return sleepCtx(ctx, s.cfg.SettleDelay)
}

func fetchFacebook(ctx context.Context, s *Session, page *rod.Page, profile model.ProfileID) (model.FetchResult, string, error) {
	if err := s.navigate(ctx, page, model.SiteFacebook.ConnectionsURL(profile)); err != nil {
		return model.FetchResult{}, "", err
	}

	rounds, err := scrollUntilIdle(ctx, func() (progress, error) {
		res, err := page.Eval(`() => {
			window.scrollTo(0, document.body.scrollHeight);
			return document.body.scrollHeight;
		}`)
		if err != nil {
			return progress{}, fmt.Errorf("failed to scroll: %w", err)
		}
		return progress{height: res.Value.Int(), items: 1}, nil
	}, s.cfg.ScrollDelay, s.cfg.MaxIdleRounds, s.cfg.MaxScrollRounds)
	if err != nil {
		return model.FetchResult{}, "", err
	}
	s.cfg.Logger.Debug("scrolled friends list", "profile", profile, "rounds", rounds)

	markup, err := page.HTML()
	if err != nil {
		return model.FetchResult{}, "", fmt.Errorf("failed to read page: %w", err)
	}

	res, err := extract.Facebook(strings.NewReader(markup), profile)
	if err != nil {
		return model.FetchResult{}, "", err
	}
	return res, markup, nil
}

func fetchInstagram(ctx context.Context, s *Session, page *rod.Page, profile model.ProfileID) (model.FetchResult, string, error) {
	if err := s.navigate(ctx, page, model.SiteInstagram.ConnectionsURL(profile)); err != nil {
		return model.FetchResult{}, "", err
	}

	markup, err := page.HTML()
	if err != nil {
		return model.FetchResult{}, "", fmt.Errorf("failed to read page: %w", err)
	}
	count, err := extract.InstagramFollowingCount(strings.NewReader(markup), profile)
	if err != nil {
		return model.FetchResult{}, "", err
	}

	dialog, ok := openFollowingModal(ctx, s, page, profile)
	if !ok {
		// Private or empty account: record it as visited with no neighbors.
		return model.FetchResult{Neighbors: []model.Neighbor{}, DeclaredCount: count}, markup, nil
	}

	neighbors, markup, err := scrapeFollowing(ctx, s, dialog, profile, s.cfg.ScrollDelay, s.cfg.MaxIdleRounds, s.cfg.MaxScrollRounds)
	if err != nil {
		return model.FetchResult{}, "", err
	}

	// Long lists load lazily and stall; give them a few slower passes.
	for attempt := 0; count > 0 && len(neighbors) < count && attempt < topUpAttempts; {
		delay := s.cfg.ScrollDelay + time.Duration(attempt+1)*time.Second
		more, moreMarkup, err := scrapeFollowing(ctx, s, dialog, profile, delay, s.cfg.MaxIdleRounds+4, s.cfg.MaxScrollRounds+150)
		if err != nil {
			return model.FetchResult{}, "", err
		}
		if len(more) <= len(neighbors) {
			attempt++
			continue
		}
		neighbors, markup = more, moreMarkup
		attempt = 0
	}

	s.cfg.Logger.Debug("scraped following list", "profile", profile, "found", len(neighbors), "declared", count)
	return model.FetchResult{Neighbors: neighbors, DeclaredCount: count}, markup, nil
}

// openFollowingModal clicks the following link of profile and waits for the
// modal. It reports false when the link or the modal does not show up.
func openFollowingModal(ctx context.Context, s *Session, page *rod.Page, profile model.ProfileID) (*rod.Element, bool) {
	selector := fmt.Sprintf(`a[href=%q]`, extract.InstagramFollowingHref(profile))

	wait := page.Timeout(dialogTimeout)
	defer wait.CancelTimeout()

	link, err := wait.Element(selector)
	if err != nil {
		s.cfg.Logger.Debug("following link not found", "profile", profile)
		return nil, false
	}
	if err := link.Click(proto.InputMouseButtonLeft, 1); err != nil {
		s.cfg.Logger.Debug("failed to open following modal", "profile", profile, "error", err)
		return nil, false
	}

	dialog, err := wait.Element(`div[role="dialog"]`)
	if err != nil {
		s.cfg.Logger.Debug("following modal did not open", "profile", profile)
		return nil, false
	}
	if err := sleepCtx(ctx, 2*time.Second); err != nil {
		return nil, false
	}
	return dialog.Context(ctx), true
}

func scrapeFollowing(ctx context.Context, s *Session, dialog *rod.Element, profile model.ProfileID, delay time.Duration, maxIdle, maxRounds int) ([]model.Neighbor, string, error) {
	_, err := scrollUntilIdle(ctx, func() (progress, error) {
		res, err := dialog.Eval(`function () {
			const rows = this.querySelectorAll('a[role="link"]');
			if (rows.length > 0) rows[rows.length - 1].scrollIntoView({block: "end"});
			return {h: this.scrollHeight || this.offsetHeight || 0, c: rows.length};
		}`)
		if err != nil {
			return progress{}, fmt.Errorf("failed to scroll modal: %w", err)
		}
		return progress{
			height: res.Value.Get("h").Int(),
			items:  res.Value.Get("c").Int(),
		}, nil
	}, delay, maxIdle, maxRounds)
	if err != nil {
		return nil, "", err
	}

	markup, err := dialog.HTML()
	if err != nil {
		return nil, "", fmt.Errorf("failed to read following modal: %w", err)
	}
	neighbors, err := extract.Instagram(strings.NewReader(markup), profile)
	if err != nil {
		return nil, "", err
	}
	return neighbors, markup, nil
}
