package server

import "strings"

// followUpMarker separates the rule body from the follow-up message in
// the raw model output. The model is prompted to emit it on a line of
// its own between the two sections.
const followUpMarker = "<<<FOLLOW_UP>>>"

// splitter incrementally partitions model text into rule and follow-up
// segments around followUpMarker. The marker may arrive split across
// any number of deltas, so the splitter withholds a tail of up to
// len(marker)-1 bytes until the next delta resolves it.
type splitter struct {
	carry       string
	inFollowUp  bool
	trimNewline bool
}

// feed consumes one model delta and returns the text that can be safely
// attributed to each segment so far.
func (sp *splitter) feed(delta string) (rule, followUp string) {
	buf := sp.carry + delta
	sp.carry = ""
	if sp.inFollowUp {
		return "", sp.followText(buf)
	}
	if i := strings.Index(buf, followUpMarker); i >= 0 {
		sp.inFollowUp = true
		sp.trimNewline = true
		rule = strings.TrimSuffix(buf[:i], "\n")
		followUp = sp.followText(buf[i+len(followUpMarker):])
		return rule, followUp
	}
	// Hold back anything that could be the start of a split marker.
	hold := len(followUpMarker) - 1
	if hold > len(buf) {
		hold = len(buf)
	}
	for ; hold > 0; hold-- {
		if strings.HasPrefix(followUpMarker, buf[len(buf)-hold:]) {
			break
		}
	}
	sp.carry = buf[len(buf)-hold:]
	return buf[:len(buf)-hold], ""
}

// followText trims the single newline that follows the marker, even
// when it arrives in a later delta than the marker itself.
func (sp *splitter) followText(text string) string {
	if sp.trimNewline && text != "" {
		sp.trimNewline = false
		text = strings.TrimPrefix(text, "\n")
	}
	return text
}

// flush releases any withheld tail after the model stream ends.
func (sp *splitter) flush() (rule, followUp string) {
	buf := sp.carry
	sp.carry = ""
	if sp.inFollowUp {
		return "", buf
	}
	return buf, ""
}
