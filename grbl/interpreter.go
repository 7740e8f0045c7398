package grbl

import (
	"regexp"
	"strconv"
	"strings"
)

// Token is a single (letter, number) pair produced by tokenising a block.
type Token struct {
	Letter byte
	Value  float64
}

var commentPattern = regexp.MustCompile(`\([^)]*\)`)

// stripComments removes parenthesised comment runs. Semicolon comments are
// not handled by this core.
func stripComments(s string) string {
	return commentPattern.ReplaceAllString(s, "")
}

var validTokenLetters = map[byte]bool{
	'G': true, 'M': true, 'X': true, 'Y': true, 'Z': true,
	'I': true, 'J': true, 'K': true, 'F': true, 'S': true, 'T': true,
}

// Tokenize uppercases a block, strips comments, and splits the remainder
// into ordered (letter, number) pairs. A malformed token (an unrecognised
// letter, or a letter not followed by a valid signed decimal) is reported
// as ErrMalformedBlock.
func Tokenize(block string) ([]Token, error) {
	s := strings.ToUpper(stripComments(block))
	s = strings.Join(strings.Fields(s), "")

	var tokens []Token
	i := 0
	for i < len(s) {
		letter := s[i]
		if !validTokenLetters[letter] {
			return nil, ErrMalformedBlock
		}
		i++
		start := i
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		digits := false
		for i < len(s) && ((s[i] >= '0' && s[i] <= '9') || s[i] == '.') {
			if s[i] != '.' {
				digits = true
			}
			i++
		}
		if !digits {
			return nil, ErrMalformedBlock
		}
		v, err := strconv.ParseFloat(s[start:i], 64)
		if err != nil {
			return nil, ErrMalformedBlock
		}
		tokens = append(tokens, Token{Letter: letter, Value: v})
	}
	return tokens, nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func parseSettingID(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

// handleGCodeBlock tokenises and applies a single G-code block. jog is true
// for a "$J=" block: it does not mutate the persistent distance mode and
// transitions to Jog rather than Run.
func (c *Controller) handleGCodeBlock(block string, jog bool) error {
	tokens, err := Tokenize(block)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// G10/G92 short-circuit: work-offset assignment, no motion (step 4).
	for _, t := range tokens {
		if t.Letter == 'G' && (t.Value == 10 || t.Value == 92) {
			c.applyWorkOffsetLocked(tokens)
			return nil
		}
	}

	// Motion-mode latch (step 5): persists across blocks regardless of jog.
	for _, t := range tokens {
		if t.Letter == 'G' {
			switch int(t.Value) {
			case 0:
				c.modal.Motion = Rapid
			case 1:
				c.modal.Motion = LinearFeed
			case 2:
				c.modal.Motion = ArcCW
			case 3:
				c.modal.Motion = ArcCCW
			}
		}
	}

	// Distance-mode latch (step 6): jog blocks affect only this block.
	blockDistance := c.modal.Distance
	for _, t := range tokens {
		if t.Letter != 'G' {
			continue
		}
		switch int(t.Value) {
		case 90:
			blockDistance = Absolute
			if !jog {
				c.modal.Distance = Absolute
			}
		case 91:
			blockDistance = Relative
			if !jog {
				c.modal.Distance = Relative
			}
		}
	}

	// Parameter intake (step 7).
	target := c.target
	var i, j float64
	moved := false
	holdRequested := false
	for _, t := range tokens {
		switch t.Letter {
		case 'F':
			c.modal.Feed = ClampFeed(t.Value)
		case 'X', 'Y', 'Z':
			if blockDistance == Absolute {
				target = target.WithAxis(t.Letter, t.Value+c.wco.Axis(t.Letter))
			} else {
				target = target.WithAxis(t.Letter, c.target.Axis(t.Letter)+t.Value)
			}
			moved = true
		case 'I':
			i = t.Value
		case 'J':
			j = t.Value
		case 'M':
			switch int(t.Value) {
			case 0:
				holdRequested = true
			case 3, 4, 5, 30:
				// accepted, no modelled effect
			}
		}
	}

	// Motion emission (step 8).
	if moved {
		start := c.target
		switch c.modal.Motion {
		case ArcCW, ArcCCW:
			waypoints := ExpandArc(start, target, i, j, c.modal.Motion == ArcCW)
			for _, w := range waypoints {
				c.queue.Push(w)
			}
		default:
			c.queue.Push(target)
		}
		c.target = target
		if jog {
			c.state = Jog
		} else {
			c.state = Run
		}
	}

	if holdRequested {
		c.state = Hold
	}

	return nil
}

// applyWorkOffsetLocked implements G10/G92: for each axis token present,
// wco[axis] = mpos[axis] - value. Callers hold c.mu.
func (c *Controller) applyWorkOffsetLocked(tokens []Token) {
	for _, t := range tokens {
		switch t.Letter {
		case 'X', 'Y', 'Z':
			c.wco = c.wco.WithAxis(t.Letter, c.mpos.Axis(t.Letter)-t.Value)
		}
	}
}
