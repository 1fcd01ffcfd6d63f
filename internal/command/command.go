// Package command models the opaque tokens carried by interactive buttons.
//
// A token is "action:cityKey:placeId[:param...]", at most MaxTokenLen bytes
// of [A-Za-z0-9_:.-]. Encode refuses anything that does not fit; it never
// truncates one command into another.
package command

import (
	"errors"
	"fmt"
	"strings"
)

// MaxTokenLen is the byte limit the chat platform puts on button payloads.
const MaxTokenLen = 64

var (
	ErrTokenTooLong   = errors.New("command token too long")
	ErrTokenCharset   = errors.New("command token has disallowed characters")
	ErrMalformedToken = errors.New("malformed command token")
)

// Action identifies what a button does. Codes are short to leave room for ids.
type Action string

const (
	Start          Action = "st"
	Cities         Action = "cs"
	City           Action = "c"
	Category       Action = "ct"
	Place          Action = "p"
	Admin          Action = "adm"
	AddCity        Action = "ac"
	RenameCity     Action = "rc"
	DeleteCity     Action = "dc"
	CityPhoto      Action = "cp"
	AddPlace       Action = "ap"
	EditPlace      Action = "ep"
	EditField      Action = "ef"
	DeletePlace    Action = "dp"
	Categories     Action = "cl"
	AddCategory    Action = "acat"
	EditCategory   Action = "ecat"
	DeleteCategory Action = "dcat"
	Ads            Action = "al"
	AddAd          Action = "aad"
	DeleteAd       Action = "dad"
	ChooseCategory Action = "cc"
	ManualCoords   Action = "mc"
	Skip           Action = "sk"
	Done           Action = "dn"
	Confirm        Action = "ok"
	Cancel         Action = "x"
)

// Command is the decoded form of a token. Params is nil when the token has
// no parameters.
type Command struct {
	Action  Action
	CityKey string
	PlaceID string
	Params  []string
}

// New builds a command for action with optional params.
func New(action Action, cityKey, placeID string, params ...string) Command {
	c := Command{Action: action, CityKey: cityKey, PlaceID: placeID}
	if len(params) > 0 {
		c.Params = params
	}
	return c
}

// Param returns the i-th parameter or "".
func (c Command) Param(i int) string {
	if i < 0 || i >= len(c.Params) {
		return ""
	}
	return c.Params[i]
}

// Encode renders the command as a token. Empty city and place ids are kept
// as empty segments so Decode can restore positions.
func Encode(c Command) (string, error) {
	if c.Action == "" {
		return "", fmt.Errorf("%w: empty action", ErrMalformedToken)
	}
	fields := make([]string, 0, 3+len(c.Params))
	fields = append(fields, string(c.Action), c.CityKey, c.PlaceID)
	fields = append(fields, c.Params...)

	for _, f := range fields {
		if !validField(f) {
			return "", fmt.Errorf("%w: %q", ErrTokenCharset, f)
		}
	}

	token := strings.Join(fields, ":")
	if len(token) > MaxTokenLen {
		return "", fmt.Errorf("%w: %d bytes", ErrTokenTooLong, len(token))
	}
	return token, nil
}

// MustEncode is Encode for commands built from constants in tests and
// static keyboards.
func MustEncode(c Command) string {
	token, err := Encode(c)
	if err != nil {
		panic(err)
	}
	return token
}

// Decode parses a token produced by Encode.
func Decode(token string) (Command, error) {
	if len(token) > MaxTokenLen {
		return Command{}, fmt.Errorf("%w: %d bytes", ErrTokenTooLong, len(token))
	}
	if !validToken(token) {
		return Command{}, ErrTokenCharset
	}
	parts := strings.Split(token, ":")
	if len(parts) < 3 || parts[0] == "" {
		return Command{}, fmt.Errorf("%w: %q", ErrMalformedToken, token)
	}
	c := Command{Action: Action(parts[0]), CityKey: parts[1], PlaceID: parts[2]}
	if len(parts) > 3 {
		c.Params = parts[3:]
	}
	return c, nil
}

func validField(s string) bool {
	for i := 0; i < len(s); i++ {
		if !allowed(s[i]) || s[i] == ':' {
			return false
		}
	}
	return true
}

func validToken(s string) bool {
	for i := 0; i < len(s); i++ {
		if !allowed(s[i]) {
			return false
		}
	}
	return true
}

func allowed(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	case b == '_', b == ':', b == '.', b == '-':
		return true
	}
	return false
}
