package blocks

import (
	"fmt"

	"github.com/slack-go/slack"
)

// The messaging gateway has no partial-patch call: every mutation is a
// whole-array read, a single-field edit, and a whole-array write. Concurrent
// edits to the same message between read and write are lost (last writer
// wins); accepted at current trigger frequency.

// ReplaceSectionText rewrites the text of the section identified by blockID
// and returns the complete block array for a single message update.
func ReplaceSectionText(blockSet []slack.Block, blockID, text string) ([]slack.Block, error) {
	section, err := findSection(blockSet, blockID)
	if err != nil {
		return nil, err
	}
	section.Text = slack.NewTextBlockObject(slack.MarkdownType, text, false, false)
	return blockSet, nil
}

// SectionText returns the rendered text of the section identified by blockID.
func SectionText(blockSet []slack.Block, blockID string) (string, error) {
	section, err := findSection(blockSet, blockID)
	if err != nil {
		return "", err
	}
	if section.Text == nil {
		return "", fmt.Errorf("block %s has no text", blockID)
	}
	return section.Text.Text, nil
}

func findSection(blockSet []slack.Block, blockID string) (*slack.SectionBlock, error) {
	for _, b := range blockSet {
		section, ok := b.(*slack.SectionBlock)
		if !ok {
			continue
		}
		if section.BlockID == blockID {
			return section, nil
		}
	}
	return nil, fmt.Errorf("block %s not found", blockID)
}
