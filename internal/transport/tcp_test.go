package transport

import (
	"bufio"
	"bytes"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTCPConnReadLine(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	tc := NewTCPConn(server)
	go func() {
		_, _ = client.Write([]byte("hello world\r\n"))
	}()

	line, err := tc.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "hello world", line)
}

func TestTCPConnReadLineAbortsUnterminatedFlood(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	tc := NewTCPConn(server)
	// 对端不停灌数据且永不发换行
	go func() {
		chunk := bytes.Repeat([]byte("a"), 8192)
		for {
			if _, err := client.Write(chunk); err != nil {
				return
			}
		}
	}()

	_, err := tc.ReadLine()
	assert.ErrorIs(t, err, ErrLineTooLong)
}

func TestTCPConnReadLineEOF(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()

	tc := NewTCPConn(server)
	go func() { _ = client.Close() }()

	_, err := tc.ReadLine()
	assert.Error(t, err)
}

func TestTCPConnWriteLine(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	tc := NewTCPConn(server)
	lines := make(chan string, 1)
	go func() {
		r := bufio.NewReader(client)
		line, err := r.ReadString('\n')
		if err != nil {
			lines <- "err:" + err.Error()
			return
		}
		lines <- line
	}()

	require.NoError(t, tc.WriteLine("greetings"))
	assert.Equal(t, "greetings\n", <-lines)
}
