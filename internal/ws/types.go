package ws

const (
	// client - server
	MsgStart    = "start"
	MsgAnswer   = "answer"
	MsgCard     = "card"
	MsgCall     = "call"
	MsgNextCard = "next_card"
	MsgGuess    = "guess"

	// server - client
	MsgRefresh   = "refresh"
	MsgMessage   = "message"
	MsgRedirect  = "redirect"
	MsgCelebrate = "celebrate"
	MsgState     = "state"
	MsgError     = "error"
)

const (
	ColorGreen  = "green"
	ColorRed    = "red"
	ColorYellow = "yellow"
)
