package session

import (
	"net"
	"testing"
	"time"

	"github.com/wfunc/drawguess/network"
)

// MockConnection is a test double for the network.Connection interface.
type MockConnection struct {
	sent int
}

func (m *MockConnection) Send(msgID uint16, data []byte) error { m.sent++; return nil }
func (m *MockConnection) Close() error                         { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                 { return &net.TCPAddr{} }
func (m *MockConnection) SetHeartbeat(interval time.Duration)  {}
func (m *MockConnection) ReadPacket() (*network.Packet, error) { return nil, nil }

func TestNewManager(t *testing.T) {
	manager := NewManager()
	if manager == nil {
		t.Fatal("NewManager should not return nil")
	}
	if manager.sessions == nil {
		t.Fatal("NewManager should initialize the sessions map")
	}
}

func TestManager_Add_Get_Remove(t *testing.T) {
	manager := NewManager()
	sessionID := "test_session_1"
	sess := NewSession(sessionID, &MockConnection{})

	manager.Add(sess)
	if manager.Count() != 1 {
		t.Fatalf("Expected session count to be 1, got %d", manager.Count())
	}

	retrievedSess, exists := manager.Get(sessionID)
	if !exists {
		t.Fatal("Get should find the added session")
	}
	if retrievedSess != sess {
		t.Fatal("Get should return the same session instance")
	}

	manager.Remove(sessionID)
	if manager.Count() != 0 {
		t.Fatalf("Expected session count to be 0 after removal, got %d", manager.Count())
	}

	_, exists = manager.Get(sessionID)
	if exists {
		t.Fatal("Get should not find the removed session")
	}
}

func TestManager_All(t *testing.T) {
	manager := NewManager()
	manager.Add(NewSession("session1", &MockConnection{}))
	manager.Add(NewSession("session2", &MockConnection{}))
	manager.Add(NewSession("session3", &MockConnection{}))

	all := manager.All()
	if len(all) != 3 {
		t.Errorf("Expected 3 sessions, got %d", len(all))
	}
}

func TestSession_Name(t *testing.T) {
	sess := NewSession("test_session", &MockConnection{})

	sess.SetName("Alice")
	if sess.GetName() != "Alice" {
		t.Errorf("Expected name Alice, got %q", sess.GetName())
	}
}

func TestSession_SendTouchesActivity(t *testing.T) {
	conn := &MockConnection{}
	sess := NewSession("test_session", conn)
	before := sess.LastActive

	time.Sleep(time.Millisecond)
	if err := sess.Send(1, nil); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if conn.sent != 1 {
		t.Error("Send should reach the connection")
	}
	if !sess.LastActive.After(before) {
		t.Error("Send should refresh LastActive")
	}
}
