package server

import (
	"log"

	"ludo-server/internal/ludo"
)

// maxBotSteps caps one bot-resolution burst. Bots always make progress, so
// this only guards against a stuck rule-engine state looping the room.
const maxBotSteps = 1000

// driveBots resolves consecutive bot turns through the same rule-engine calls
// a human intent uses, broadcasting each roll and move. It runs inside the
// room goroutine after every committed intent and returns as soon as the
// current player is human or the game stops.
func (r *Room) driveBots() {
	for steps := 0; steps < maxBotSteps; steps++ {
		if r.game.Status != ludo.StatusPlaying {
			return
		}
		bot := r.game.CurrentPlayer()
		if bot == nil || !bot.IsBot {
			return
		}

		results, err := r.game.RollDice(bot.ID)
		if err != nil {
			log.Printf("[BOT] %s roll failed: %v", bot.Name, err)
			return
		}
		r.announceRoll(bot, results)

		last := results[len(results)-1]
		if last.TurnEnded {
			r.broadcastGameState()
			continue
		}

		result, err := r.game.MovePiece(bot.ID, botPick(last.MovablePieceIDs))
		if err != nil {
			log.Printf("[BOT] %s move failed: %v", bot.Name, err)
			return
		}
		r.broadcast("piece_moved", PieceMovedMessage{
			PlayerID: bot.ID,
			Result:   *result,
		})
		if r.game.Status == ludo.StatusFinished {
			r.announceGameEnd()
		}
		r.broadcastGameState()
	}
	log.Printf("[BOT] stopped after %d steps without reaching a human turn", maxBotSteps)
}
