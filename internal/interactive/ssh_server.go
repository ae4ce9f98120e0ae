package interactive

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/shiwa/remo/internal/logger"
	"github.com/shiwa/remo/pkg/config"
	"golang.org/x/crypto/ssh"
	"golang.org/x/term"
)

const hostKeyBits = 2048

// SSHServer — консоль по SSH: интерактивный shell и exec одной команды.
type SSHServer struct {
	cfg     config.SSHConfig
	console *Console
	sc      *ssh.ServerConfig
}

// NewSSHServer настраивает аутентификацию (пароль и/или authorized_keys) и ключ хоста.
func NewSSHServer(cfg config.SSHConfig, console *Console) (*SSHServer, error) {
	s := &SSHServer{cfg: cfg, console: console, sc: &ssh.ServerConfig{}}
	if cfg.Password == "" && cfg.AuthorizedKeys == "" {
		return nil, errors.New("ssh: password or authorized_keys required")
	}
	if cfg.Password != "" {
		s.sc.PasswordCallback = func(c ssh.ConnMetadata, pass []byte) (*ssh.Permissions, error) {
			if c.User() == cfg.Username && string(pass) == cfg.Password {
				return nil, nil
			}
			return nil, fmt.Errorf("ssh: password rejected for %q", c.User())
		}
	}
	if cfg.AuthorizedKeys != "" {
		keys, err := loadAuthorizedKeys(cfg.AuthorizedKeys)
		if err != nil {
			return nil, err
		}
		s.sc.PublicKeyCallback = func(c ssh.ConnMetadata, key ssh.PublicKey) (*ssh.Permissions, error) {
			if c.User() != cfg.Username {
				return nil, fmt.Errorf("ssh: unknown user %q", c.User())
			}
			wire := key.Marshal()
			for _, k := range keys {
				if bytes.Equal(k.Marshal(), wire) {
					return nil, nil
				}
			}
			return nil, fmt.Errorf("ssh: key rejected for %q", c.User())
		}
	}
	if err := s.configureServerKeys(); err != nil {
		return nil, err
	}
	return s, nil
}

func loadAuthorizedKeys(path string) ([]ssh.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ssh: authorized_keys: %w", err)
	}
	var keys []ssh.PublicKey
	for len(bytes.TrimSpace(data)) > 0 {
		key, _, _, rest, err := ssh.ParseAuthorizedKey(data)
		if err != nil {
			return nil, fmt.Errorf("ssh: authorized_keys %s: %w", path, err)
		}
		keys = append(keys, key)
		data = rest
	}
	return keys, nil
}

// configureServerKeys загружает ключ хоста; если его нет — генерирует и сохраняет.
func (s *SSHServer) configureServerKeys() error {
	signer, err := loadSSHKey(s.cfg.HostKey)
	if err != nil {
		logger.Info("ssh: host key %s: %v, generating new", s.cfg.HostKey, err)
		signer, err = generateNewSSHKey(s.cfg.HostKey)
		if err != nil {
			return err
		}
	}
	s.sc.AddHostKey(signer)
	return nil
}

func loadSSHKey(path string) (ssh.Signer, error) {
	if path == "" {
		return nil, errors.New("no path")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ssh.ParsePrivateKey(data)
}

func generateNewSSHKey(path string) (ssh.Signer, error) {
	key, err := rsa.GenerateKey(rand.Reader, hostKeyBits)
	if err != nil {
		return nil, fmt.Errorf("ssh: generate host key: %w", err)
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	signer, err := ssh.ParsePrivateKey(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("ssh: parse generated key: %w", err)
	}
	if path != "" {
		if err := os.WriteFile(path, pemBytes, 0o600); err != nil {
			logger.Error("ssh: host key write %s: %v", path, err)
		} else {
			logger.Info("ssh: host key written to %s", path)
		}
	}
	return signer, nil
}

// ListenAndServe слушает host:port из конфига до отмены ctx.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("ssh listen %s: %w", addr, err)
	}
	logger.Info("ssh: listening on %s", ln.Addr())
	return s.Serve(ctx, ln)
}

// Serve принимает соединения на ln до отмены ctx; ln закрывается.
func (s *SSHServer) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("ssh accept: %w", err)
		}
		go s.processConnection(conn)
	}
}

func (s *SSHServer) processConnection(conn net.Conn) {
	defer conn.Close()
	sconn, chans, reqs, err := ssh.NewServerConn(conn, s.sc)
	if err != nil {
		logger.Debug("ssh: handshake %s: %v", conn.RemoteAddr(), err)
		return
	}
	defer sconn.Close()
	logger.Debug("ssh: %s logged in from %s", sconn.User(), sconn.RemoteAddr())
	go ssh.DiscardRequests(reqs)
	for nc := range chans {
		if nc.ChannelType() != "session" {
			_ = nc.Reject(ssh.UnknownChannelType, "only session channels")
			continue
		}
		ch, requests, err := nc.Accept()
		if err != nil {
			continue
		}
		go s.runSession(ch, requests)
	}
}

// runSession обслуживает канал: shell — интерактивный терминал, exec — одна команда.
func (s *SSHServer) runSession(ch ssh.Channel, requests <-chan *ssh.Request) {
	defer ch.Close()
	for req := range requests {
		switch req.Type {
		case "pty-req", "window-change", "env":
			_ = req.Reply(req.Type != "env", nil)
		case "shell":
			_ = req.Reply(true, nil)
			s.runShell(ch)
			sendExitStatus(ch, 0)
			return
		case "exec":
			var payload struct{ Command string }
			if err := ssh.Unmarshal(req.Payload, &payload); err != nil {
				_ = req.Reply(false, nil)
				continue
			}
			_ = req.Reply(true, nil)
			out, _ := s.console.Dispatch(payload.Command)
			_, _ = ch.Write([]byte(out))
			sendExitStatus(ch, 0)
			return
		default:
			_ = req.Reply(false, nil)
		}
	}
}

func (s *SSHServer) runShell(ch ssh.Channel) {
	t := term.NewTerminal(ch, "remo> ")
	fmt.Fprintf(t, "remo %s, type help\r\n", s.console.Version)
	for {
		line, err := t.ReadLine()
		if err != nil {
			return
		}
		out, exit := s.console.Dispatch(line)
		if exit {
			return
		}
		_, _ = t.Write([]byte(out))
	}
}

func sendExitStatus(ch ssh.Channel, code uint32) {
	_, _ = ch.SendRequest("exit-status", false, ssh.Marshal(struct{ Status uint32 }{code}))
}
