package amqpwire

import "bytes"

// PlainAuth builds the SASL PLAIN Authentication offered in Config.SASL. This
// is the donor service's own default mechanism, not "the" security-mechanism
// implementation spec.md leaves as an external collaborator - callers needing
// something else build their own Authentication value directly.
func PlainAuth(username, password string) Authentication {
	response := make([]byte, 0, len(username)+len(password)+2)
	response = append(response, 0)
	response = append(response, username...)
	response = append(response, 0)
	response = append(response, password...)
	return Authentication{Mechanism: "PLAIN", Response: response}
}

// AMQPPlainAuth builds the RabbitMQ-specific AMQPLAIN mechanism: the
// response body is a regular field table (LOGIN, PASSWORD string entries),
// length-prefixed exactly like any other field table value.
func AMQPPlainAuth(username, password string) (Authentication, error) {
	var buf bytes.Buffer
	table := Table{"LOGIN": username, "PASSWORD": password}
	if err := encodeTable(&buf, table); err != nil {
		return Authentication{}, err
	}
	return Authentication{Mechanism: "AMQPLAIN", Response: buf.Bytes()}, nil
}
