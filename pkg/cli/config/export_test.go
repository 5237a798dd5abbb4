package config

import "time"

// Test helpers to set unexported flag destinations directly

func (p *Profiles) SetPath(path string) {
	p.path = path
}

func (l *Logger) SetForTest(level, format, output string, quiet bool) {
	l.level = level
	l.format = format
	l.output = output
	l.quiet = quiet
}

func (b *Bus) SetForTest(mode string, workers, depth int) {
	b.mode = mode
	b.workers = workers
	b.depth = depth
}

func (u *Unlock) SetForTest(passphrase string, ttl time.Duration) {
	u.passphrase = passphrase
	u.ttl = ttl
}
