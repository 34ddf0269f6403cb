package blocks

import (
	"fmt"
	"strings"

	"github.com/slack-go/slack"
)

// WithStatusOption pins the status select of a control message to the given
// value, so the rendered control reflects the record after a lifecycle change.
func WithStatusOption(blockSet []slack.Block, status string) ([]slack.Block, error) {
	return withInitialOption(blockSet, StatusBlockID, status, RoleDisplayName(status))
}

// WithSeverityOption pins the severity select of a control message.
func WithSeverityOption(blockSet []slack.Block, severity string) ([]slack.Block, error) {
	return withInitialOption(blockSet, SeverityBlockID, severity, strings.ToUpper(severity))
}

func withInitialOption(blockSet []slack.Block, blockID, value, label string) ([]slack.Block, error) {
	selectElement, err := findSelect(blockSet, blockID)
	if err != nil {
		return nil, err
	}
	selectElement.InitialOption = slack.NewOptionBlockObject(
		value,
		slack.NewTextBlockObject(slack.PlainTextType, label, false, false),
		nil,
	)
	return blockSet, nil
}

// WithResolutionGuard attaches a confirmation dialog to the status select.
// Applied once the incident is resolved, so reopening takes a deliberate
// second click.
func WithResolutionGuard(blockSet []slack.Block) ([]slack.Block, error) {
	selectElement, err := findSelect(blockSet, StatusBlockID)
	if err != nil {
		return nil, err
	}
	confirm := slack.NewConfirmationBlockObject(
		slack.NewTextBlockObject(slack.PlainTextType, "This incident is resolved.", false, false),
		slack.NewTextBlockObject(slack.PlainTextType, "Changing the status will reopen the incident. Continue?", false, false),
		slack.NewTextBlockObject(slack.PlainTextType, "Reopen", false, false),
		slack.NewTextBlockObject(slack.PlainTextType, "Cancel", false, false),
	)
	confirm.WithStyle(slack.StyleDanger)
	selectElement.Confirm = confirm
	return blockSet, nil
}

// ResolutionGuarded reports whether the status select already carries the
// reopen confirmation.
func ResolutionGuarded(blockSet []slack.Block) bool {
	selectElement, err := findSelect(blockSet, StatusBlockID)
	if err != nil {
		return false
	}
	return selectElement.Confirm != nil
}

func findSelect(blockSet []slack.Block, blockID string) (*slack.SelectBlockElement, error) {
	for _, b := range blockSet {
		section, ok := b.(*slack.SectionBlock)
		if !ok || section.BlockID != blockID {
			continue
		}
		if section.Accessory == nil || section.Accessory.SelectElement == nil {
			return nil, fmt.Errorf("block %s has no select accessory", blockID)
		}
		return section.Accessory.SelectElement, nil
	}
	return nil, fmt.Errorf("block %s not found", blockID)
}
