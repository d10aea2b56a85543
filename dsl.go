package ability

import (
	"fmt"
	"strconv"
	"strings"
)

// DSL Syntax:
//	version <n>
//	cache <key>=<value>...
//	operation <id> <check> [<check>...]
//
// A check is <action>:<subject>, with an optional '!' suffix to require a
// resolved record and an optional '#f1,f2' suffix listing permitted update
// fields. Operation ids containing spaces (route patterns) are quoted.
// Lines starting with '#' are comments.

type DSLParser struct {
	line int
}

func NewDSLParser() *DSLParser {
	return &DSLParser{}
}

func (p *DSLParser) Parse(data []byte) (*Config, error) {
	p.line = 0
	cfg := &Config{}
	for _, raw := range strings.Split(string(data), "\n") {
		p.line++
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tokens := tokenize(line)
		if len(tokens) == 0 {
			continue
		}
		switch tokens[0] {
		case "version":
			if len(tokens) != 2 {
				return nil, p.errorf("version expects one argument")
			}
			v, err := strconv.ParseUint(tokens[1], 10, 16)
			if err != nil {
				return nil, p.errorf("bad version %q", tokens[1])
			}
			cfg.Version = uint16(v)
		case "cache":
			for _, kv := range tokens[1:] {
				if err := p.applyCacheOption(&cfg.Cache, kv); err != nil {
					return nil, err
				}
			}
		case "operation":
			if len(tokens) < 3 {
				return nil, p.errorf("operation expects an id and at least one check")
			}
			op := OperationConfig{ID: tokens[1]}
			for _, tok := range tokens[2:] {
				chk, err := p.parseCheck(tok)
				if err != nil {
					return nil, err
				}
				op.Checks = append(op.Checks, chk)
			}
			cfg.Operations = append(cfg.Operations, op)
		default:
			return nil, p.errorf("unknown directive %q", tokens[0])
		}
	}
	return cfg, nil
}

func (p *DSLParser) applyCacheOption(cache *CacheConfig, kv string) error {
	key, val, ok := strings.Cut(kv, "=")
	if !ok {
		return p.errorf("cache option %q is not key=value", kv)
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return p.errorf("cache option %q: bad number %q", key, val)
	}
	switch key {
	case "record_ttl_ms":
		cache.RecordTTL = n
	case "record_max_entries":
		cache.RecordMaxEntries = n
	default:
		return p.errorf("unknown cache option %q", key)
	}
	return nil
}

func (p *DSLParser) parseCheck(tok string) (CheckConfig, error) {
	chk := CheckConfig{}
	head, fields, hasFields := strings.Cut(tok, "#")
	if hasFields {
		chk.Fields = splitCSV(fields)
		if len(chk.Fields) == 0 {
			return chk, p.errorf("check %q lists no fields", tok)
		}
	}
	if strings.HasSuffix(head, "!") {
		chk.Record = true
		head = strings.TrimSuffix(head, "!")
	}
	action, subject, ok := strings.Cut(head, ":")
	if !ok || action == "" || subject == "" {
		return chk, p.errorf("check %q is not action:subject", tok)
	}
	chk.Action = action
	chk.Subject = subject
	return chk, nil
}

func (p *DSLParser) errorf(format string, args ...any) error {
	return fmt.Errorf("line %d: %s", p.line, fmt.Sprintf(format, args...))
}

// splitCSV splits "a,b, c" into trimmed non-empty parts
func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// tokenize splits a line on whitespace, honoring double-quoted tokens so
// route-pattern operation ids keep their embedded space.
func tokenize(line string) []string {
	var tokens []string
	var cur strings.Builder
	inQuote := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			inQuote = !inQuote
		case (c == ' ' || c == '\t') && !inQuote:
			if cur.Len() > 0 {
				tokens = append(tokens, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteByte(c)
		}
	}
	if cur.Len() > 0 {
		tokens = append(tokens, cur.String())
	}
	return tokens
}

type DSLEncoder struct {
	buf []byte
}

func NewDSLEncoder() *DSLEncoder {
	return &DSLEncoder{buf: make([]byte, 0, 1024)}
}

func (e *DSLEncoder) Encode(cfg *Config) ([]byte, error) {
	e.buf = e.buf[:0]
	var tmp [20]byte

	e.buf = append(e.buf, "version "...)
	e.buf = append(e.buf, strconv.AppendUint(tmp[:0], uint64(cfg.Version), 10)...)
	e.buf = append(e.buf, '\n')

	if cfg.Cache != (CacheConfig{}) {
		e.buf = append(e.buf, "cache"...)
		if cfg.Cache.RecordTTL != 0 {
			e.buf = append(e.buf, " record_ttl_ms="...)
			e.buf = append(e.buf, strconv.AppendInt(tmp[:0], cfg.Cache.RecordTTL, 10)...)
		}
		if cfg.Cache.RecordMaxEntries != 0 {
			e.buf = append(e.buf, " record_max_entries="...)
			e.buf = append(e.buf, strconv.AppendInt(tmp[:0], cfg.Cache.RecordMaxEntries, 10)...)
		}
		e.buf = append(e.buf, '\n')
	}

	for _, op := range cfg.Operations {
		e.buf = append(e.buf, "operation "...)
		if strings.ContainsAny(op.ID, " \t") {
			e.buf = append(e.buf, '"')
			e.buf = append(e.buf, op.ID...)
			e.buf = append(e.buf, '"')
		} else {
			e.buf = append(e.buf, op.ID...)
		}
		for _, chk := range op.Checks {
			e.buf = append(e.buf, ' ')
			e.buf = append(e.buf, chk.Action...)
			e.buf = append(e.buf, ':')
			e.buf = append(e.buf, chk.Subject...)
			if chk.Record {
				e.buf = append(e.buf, '!')
			}
			if len(chk.Fields) > 0 {
				e.buf = append(e.buf, '#')
				e.buf = append(e.buf, strings.Join(chk.Fields, ",")...)
			}
		}
		e.buf = append(e.buf, '\n')
	}

	out := make([]byte, len(e.buf))
	copy(out, e.buf)
	return out, nil
}
