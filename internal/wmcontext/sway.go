package wmcontext

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"
)

// swayIPCMagic is the fixed 6-byte preamble of the sway/i3 IPC binary
// framing: magic string, uint32 payload length, uint32 message type.
const swayIPCMagic = "i3-ipc"

const swayGetTree = 4

// swayProvider speaks the sway IPC wire protocol directly over
// $SWAYSOCK to find the focused node's app_id/class and name, rather
// than shelling out to swaymsg.
type swayProvider struct {
	log *slog.Logger
}

func newSwayProvider(log *slog.Logger) *swayProvider {
	return &swayProvider{log: log.With("provider", "sway")}
}

// Snapshot implements Provider.
func (p *swayProvider) Snapshot(ctx context.Context) Context {
	return recoverSnapshot(p.log, "sway", func() (Context, error) {
		return swaySnapshot(ctx)
	})
}

func swaySnapshot(ctx context.Context) (Context, error) {
	sockPath := os.Getenv("SWAYSOCK")
	if sockPath == "" {
		return Empty, errors.New("SWAYSOCK not set")
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", sockPath)
	if err != nil {
		return Empty, err
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(100 * time.Millisecond))

	if err := writeSwayMessage(conn, swayGetTree, nil); err != nil {
		return Empty, err
	}
	payload, err := readSwayMessage(conn)
	if err != nil {
		return Empty, err
	}

	var root swayNode
	if err := json.Unmarshal(payload, &root); err != nil {
		return Empty, fmt.Errorf("decoding sway tree: %w", err)
	}

	if focused := findFocused(&root); focused != nil {
		class := focused.AppID
		if class == "" {
			class = focused.WindowProperties.Class
		}
		return Context{WMClass: class, WMName: focused.Name}, nil
	}
	return Empty, errors.New("no focused node in sway tree")
}

type swayNode struct {
	Focused          bool   `json:"focused"`
	Name             string `json:"name"`
	AppID            string `json:"app_id"`
	WindowProperties struct {
		Class string `json:"class"`
	} `json:"window_properties"`
	Nodes         []swayNode `json:"nodes"`
	FloatingNodes []swayNode `json:"floating_nodes"`
}

func findFocused(n *swayNode) *swayNode {
	if n.Focused {
		return n
	}
	for i := range n.Nodes {
		if found := findFocused(&n.Nodes[i]); found != nil {
			return found
		}
	}
	for i := range n.FloatingNodes {
		if found := findFocused(&n.FloatingNodes[i]); found != nil {
			return found
		}
	}
	return nil
}

func writeSwayMessage(conn net.Conn, msgType uint32, payload []byte) error {
	header := make([]byte, 14)
	copy(header, swayIPCMagic)
	binary.LittleEndian.PutUint32(header[6:], uint32(len(payload)))
	binary.LittleEndian.PutUint32(header[10:], msgType)
	if _, err := conn.Write(header); err != nil {
		return err
	}
	if len(payload) > 0 {
		_, err := conn.Write(payload)
		return err
	}
	return nil
}

func readSwayMessage(conn net.Conn) ([]byte, error) {
	header := make([]byte, 14)
	if _, err := readFull(conn, header); err != nil {
		return nil, err
	}
	if string(header[:6]) != swayIPCMagic {
		return nil, errors.New("bad sway ipc magic")
	}
	length := binary.LittleEndian.Uint32(header[6:10])
	payload := make([]byte, length)
	if length > 0 {
		if _, err := readFull(conn, payload); err != nil {
			return nil, err
		}
	}
	return payload, nil
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
