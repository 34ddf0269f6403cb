package rca

import "fmt"

func Render(title, createdAt, commander, severity, severityDefinition, summary, pinnedItems, timeline, channelURL string) string {
	return fmt.Sprintf(`
# Title

%s

## Date

%s

## Incident Commander

%s

## Severity

%s

%s

## Summary

%s

## Root Cause

_To be completed by the responders._

## Contributing Factors

_To be completed by the responders._

## Remediation and Action Items

_To be completed by the responders._

## Pinned Items

%s

## Timeline

%s

## References
- [Incident response channel](%s)
`, title, createdAt, commander, severity, severityDefinition, summary, pinnedItems, timeline, channelURL)
}
