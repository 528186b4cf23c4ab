package domain

// Conversation represents the conversation aggregate root
type Conversation struct {
	ChatID  string
	History []Message
	Current *Message
}

// HistoryExcludingCurrent gets history excluding current message.
// The current message is matched by ID, or by sender and text when the
// stored copy has no ID yet.
func (c *Conversation) HistoryExcludingCurrent() []Message {
	if c.Current == nil || len(c.History) == 0 {
		return c.History
	}

	var result []Message
	for _, m := range c.History {
		if c.isCurrent(m) {
			continue
		}
		result = append(result, m)
	}
	return result
}

// LastN returns at most n of the most recent history messages (excluding current)
func (c *Conversation) LastN(n int) []Message {
	history := c.HistoryExcludingCurrent()
	if n <= 0 {
		return nil
	}
	if len(history) > n {
		return history[len(history)-n:]
	}
	return history
}

func (c *Conversation) isCurrent(m Message) bool {
	if c.Current.ID != "" && m.ID != "" {
		return m.ID == c.Current.ID
	}
	return m.Sender == c.Current.Sender && m.Text == c.Current.Text
}
