// SPDX-License-Identifier: MPL-2.0

package basecheck

import (
	"fmt"
)

// DefaultAutoFixHint tells the operator how to turn auto-fix on.
const DefaultAutoFixHint = "Enable auto_fix to remove it automatically on the next run."

func collisionText(c Collision) string {
	return fmt.Sprintf("[%s] causes compatibility errors by overwriting %s in file %s", c.ModName, c.Name, c.Path)
}

func hintText(c Collision, hint string) string {
	return fmt.Sprintf("[%s] %s in %s overwrites a base template. %s", c.ModName, c.Name, c.Path, hint)
}

func autoFixNoticeText() string {
	return "Auto-fix is enabled. Overlay definitions that overwrite base templates will be deleted " +
		"from the mod files on disk. Auto-fix switches itself off after this run."
}

func removedText(path string, names []string) string {
	return fmt.Sprintf("Removed %d overwriting definition(s) from %s: %v", len(names), path, names)
}

func persistFailedText(path string, err error) string {
	return fmt.Sprintf("Failed to save %s after removing overwriting definitions: %v", path, err)
}

func repairFailedText(path string, err error) string {
	return fmt.Sprintf("Could not remove overwriting definitions from %s: %v", path, err)
}

func completionText(removed, files, failed int) string {
	msg := fmt.Sprintf("Auto-fix finished: removed %d definition(s) from %d file(s).", removed, files)
	if failed > 0 {
		msg += fmt.Sprintf(" %d file(s) could not be saved.", failed)
	}
	return msg + " Auto-fix is now disabled."
}
