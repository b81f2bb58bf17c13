package amqpwire

// MatchConsumerTag returns a Watch matcher selecting basic.Deliver methods
// for a specific consumer tag - the common case of wiring Channel.Watch to
// one consumer's delivery channel.
func MatchConsumerTag(tag string) func(Method) bool {
	return func(m Method) bool {
		d, ok := m.(*BasicDeliver)
		return ok && d.ConsumerTag == tag
	}
}

// MatchReturn is a Watch matcher selecting basic.Return methods, the
// mandatory/immediate-publish bounce-back delivery.
func MatchReturn(m Method) bool {
	_, ok := m.(*BasicReturn)
	return ok
}

// MatchAck is a Watch matcher selecting basic.Ack and basic.Nack
// methods, used to observe broker confirms after confirm.Select.
func MatchAck(m Method) bool {
	switch m.(type) {
	case *BasicAck, *BasicNack:
		return true
	default:
		return false
	}
}
