package sound

// Cue file names shipped with the kiosk assets.
const (
	CueButtonSelection = "button selection.mp3"
	CueInitialising    = "initialising drone and nodes before game.mp3"
	CueGameStart       = "game_start.mp3"
	CueRFIDSuccess     = "rfid_success.mp3"
	CueRFIDError       = "rfid_error.mp3"
	CueNamePopup       = "name and rfid pops up.mp3"
	CueFinalScore      = "final score display.mp3"
	CueScoreSubmit     = "score_submit.mp3"
	CueLeaderboard     = "leaderboard.mp3"
	CueDroneHome       = "drone back to home.mp3"
)
