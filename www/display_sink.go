package www

// WebSocketSink applies title and scroll changes in every connected browser.
type WebSocketSink struct {
	hub *Hub
}

func NewWebSocketSink(hub *Hub) *WebSocketSink {
	return &WebSocketSink{hub: hub}
}

func (s *WebSocketSink) SetTitle(label string) {
	s.hub.Publish(Message{Type: MessageTypeTitle, Title: label})
}

func (s *WebSocketSink) ScrollToSlot(key string) {
	s.hub.Publish(Message{Type: MessageTypeScroll, Key: key})
}
