package osc

import (
	"github.com/hypebeast/go-osc/osc"
)

const (
	QUIT_ADDRESS = "/NI mate"
	QUIT_COMMAND = "quit"
	LOCALHOST    = "127.0.0.1"
)

// QuitPayload is the datagram that asks the companion application to exit:
// address "/NI mate", type tag ",s", argument "quit".
var QuitPayload = []byte{
	0x2F, 0x4E, 0x49, 0x20, 0x6D, 0x61, 0x74, 0x65, 0x00, 0x00, 0x00, 0x00,
	0x2C, 0x73, 0x00, 0x00,
	0x71, 0x75, 0x69, 0x74, 0x00, 0x00, 0x00, 0x00,
}

func QuitMessage() *osc.Message {
	return osc.NewMessage(QUIT_ADDRESS, QUIT_COMMAND)
}

// SendQuit fires the quit message at the companion application listening on
// localhost.
func SendQuit(port int) error {
	client := osc.NewClient(LOCALHOST, port)
	return client.Send(QuitMessage())
}
