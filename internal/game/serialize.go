package game

import "encoding/json"

// Serialize encodes the full game state to a persistable string. The
// round trip through Deserialize is lossless.
func (g *Game) Serialize() (string, error) {
	b, err := json.Marshal(g)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Deserialize restores a game previously encoded with Serialize.
func Deserialize(state string) (*Game, error) {
	g := &Game{}
	if err := json.Unmarshal([]byte(state), g); err != nil {
		return nil, err
	}
	if g.Deck == nil {
		g.Deck = NewDeck()
	}
	if g.Pyramid == nil {
		g.Pyramid = &Pyramid{}
	}
	if g.Bus == nil {
		g.Bus = &Bus{}
	}
	if g.Hands == nil {
		g.Hands = make(map[string]*Hand)
	}
	return g, nil
}
