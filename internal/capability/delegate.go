package capability

import (
	"strings"

	"github.com/simonhull/firebird-suite/petrel/internal/merge"
)

// Anchors in the Expo app delegate template.
const (
	ImportsAnchor  = `#import "AppDelegate.h"`
	DelegateAnchor = "- (void)application:(UIApplication *)application didRegisterForRemoteNotificationsWithDeviceToken:(NSData *)deviceToken\n{"
)

// Region tags.
const (
	ImportsTag  = "REMOTE_NOTIFICATIONS_DELEGATE_IMPORTS"
	DelegateTag = "REMOTE_NOTIFICATIONS_DELEGATE_CODE"
)

// PatchDelegate merges the requested imports and delegate code into the app
// delegate at path, marking the regions in the comment syntax of its file
// type. Imports already in src are skipped one by one; the rest go in a
// single region. The code is merged only when src does not contain it yet.
// A missing anchor leaves the corresponding part out.
func PatchDelegate(path, src, code string, imports []string) string {
	c := merge.CommentFor(path)

	if missing := merge.Missing(src, imports); len(missing) > 0 {
		src = merge.Merge(src, ImportsAnchor, strings.Join(missing, "\n"), ImportsTag, c)
	}

	if code != "" && !merge.Contains(src, code) {
		src = merge.Merge(src, DelegateAnchor, code, DelegateTag, c)
	}

	return src
}
