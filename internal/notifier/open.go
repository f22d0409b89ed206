package notifier

import (
	"context"
	"net/url"
	"os/exec"
	"runtime"

	"github.com/julianstephens/softworkday/internal/constants"
	"github.com/julianstephens/softworkday/internal/logger"
)

var openURLFunc = openURL

// DetailURL returns the address of the detail view for a notification.
func DetailURL(baseURL, id string) string {
	q := url.Values{}
	q.Set(constants.QueryMessageID, id)
	q.Set(constants.QuerySource, constants.SourceNotify)
	return baseURL + "/?" + q.Encode()
}

// OpenDetail returns a ClickHandler that opens the detail view of the
// clicked notification in the user's browser.
func OpenDetail(baseURL string) ClickHandler {
	log := logger.Component("notifier")
	return func(ctx context.Context, id string) {
		target := DetailURL(baseURL, id)
		if err := openURLFunc(ctx, target); err != nil {
			log.Error("Failed to open detail view", "url", target, "error", err)
		}
	}
}

// openURL hands target to the desktop's URL opener. The opener outlives
// the request that triggered it.
func openURL(_ context.Context, target string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		cmd = exec.Command("xdg-open", target)
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait()
	return nil
}
