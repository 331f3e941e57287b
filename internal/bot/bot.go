package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"solana-swap-bot/internal/domain"
	"solana-swap-bot/internal/observability"
	"solana-swap-bot/internal/solana"
	"solana-swap-bot/internal/telegram"
	"solana-swap-bot/internal/wallet"
)

const msgWelcome = "This bot swaps SOL into any SPL token and back.\n\n" +
	"/swap - buy a token with SOL\n" +
	"/sell - sell a token for SOL\n" +
	"/balance - show your wallet balance\n" +
	"/cancel - abandon the current swap"

// Commands is the menu published to the chat transport on startup.
var Commands = []telegram.BotCommand{
	{Command: "swap", Description: "Swap SOL for a token"},
	{Command: "buy", Description: "Swap SOL for a token"},
	{Command: "sell", Description: "Sell a token for SOL"},
	{Command: "balance", Description: "Show wallet balance"},
	{Command: "cancel", Description: "Abandon the current swap"},
	{Command: "start", Description: "Show help"},
}

// WalletProvisioner creates a wallet for a user on first contact.
// created reports whether this call generated a fresh one.
type WalletProvisioner interface {
	EnsureWallet(ctx context.Context, userID int64) (w *domain.UserWallet, created bool, err error)
}

// Config carries the bot's collaborators. Guard, Machine, Sessions and
// Source are required; the rest degrade gracefully when absent.
type Config struct {
	Guard    *Guard
	Machine  *Machine
	Sessions *SessionStore
	Source   wallet.Source

	// Provisioner, when set, gives every user a wallet on /start.
	Provisioner WalletProvisioner

	RPC solana.RPCClient // balance queries; nil disables /balance

	// Watcher caches one address's balance; wire it only with a static
	// single-wallet source, per-user wallets must go through RPC.
	Watcher *solana.BalanceWatcher
	Metrics *observability.Metrics
}

// Bot routes inbound chat updates to the dialog machine and commands.
type Bot struct {
	cfg Config
}

// New creates a Bot.
func New(cfg Config) *Bot {
	return &Bot{cfg: cfg}
}

// HandleUpdate processes one inbound update. This is the recovery boundary:
// whatever a handler does, a panic is logged and answered with a generic
// apology instead of taking the process down with it.
func (b *Bot) HandleUpdate(ctx context.Context, update telegram.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		return
	}
	userID := msg.Chat.ID

	defer func() {
		if r := recover(); r != nil {
			log.Printf("bot: user %d: panic handling update %d: %v", userID, update.UpdateID, r)
			b.cfg.Metrics.RecordPanic()
			b.cfg.Guard.Deliver(ctx, userID, "Something went wrong. Please try again.")
		}
	}()

	b.cfg.Metrics.RecordUpdate()

	text := strings.TrimSpace(msg.Text)
	if strings.HasPrefix(text, "/") {
		b.handleCommand(ctx, userID, text)
		return
	}

	b.cfg.Sessions.Do(userID, func(sess *Session) {
		b.cfg.Machine.HandleText(ctx, userID, sess, text)
	})
}

func (b *Bot) handleCommand(ctx context.Context, userID int64, text string) {
	command := strings.Fields(text)[0]
	// Group chats address commands as /swap@botname.
	if at := strings.Index(command, "@"); at > 0 {
		command = command[:at]
	}
	b.cfg.Metrics.RecordCommand(strings.TrimPrefix(command, "/"))

	switch command {
	case "/start", "/help":
		b.cfg.Guard.Deliver(ctx, userID, msgWelcome)
		b.provisionWallet(ctx, userID)

	case "/swap", "/buy":
		b.cfg.Sessions.Do(userID, func(sess *Session) {
			b.cfg.Machine.StartSwap(ctx, userID, sess)
		})

	case "/sell":
		b.cfg.Sessions.Do(userID, func(sess *Session) {
			b.cfg.Machine.StartSell(ctx, userID, sess)
		})

	case "/cancel":
		canceled := false
		b.cfg.Sessions.Do(userID, func(sess *Session) {
			canceled = b.cfg.Machine.Cancel(ctx, userID, sess)
		})
		if canceled {
			b.cfg.Guard.Deliver(ctx, userID, "Canceled.")
		} else {
			b.cfg.Guard.Deliver(ctx, userID, "Nothing to cancel.")
		}

	case "/balance":
		b.handleBalance(ctx, userID)

	default:
		b.cfg.Guard.Deliver(ctx, userID, "Unknown command. Send /start for the list of commands.")
	}
}

// provisionWallet makes sure a first-time user leaves /start with a wallet.
func (b *Bot) provisionWallet(ctx context.Context, userID int64) {
	if b.cfg.Provisioner == nil {
		return
	}

	w, created, err := b.cfg.Provisioner.EnsureWallet(ctx, userID)
	if err != nil {
		log.Printf("bot: user %d: provision wallet: %v", userID, err)
		return
	}
	if created {
		b.cfg.Guard.Deliver(ctx, userID,
			"Created a wallet for you:\n"+w.PublicKey+"\n\nDeposit SOL to it before swapping.")
		return
	}
	b.cfg.Guard.Deliver(ctx, userID, "Your wallet:\n"+w.PublicKey)
}

// handleBalance reports the lamport balance of the user's wallet, preferring
// the subscription cache over an RPC round trip when one is running.
func (b *Bot) handleBalance(ctx context.Context, userID int64) {
	kp, release, err := b.cfg.Source.Acquire(ctx, domain.CredentialRef{UserID: userID})
	if err != nil {
		if errors.Is(err, wallet.ErrNoCredential) {
			b.cfg.Guard.Deliver(ctx, userID, "No wallet is configured. Please contact the operator.")
			return
		}
		log.Printf("bot: user %d: balance: acquire credential: %v", userID, err)
		b.cfg.Guard.Deliver(ctx, userID, "Could not load your wallet. Please try again later.")
		return
	}
	address := kp.PublicKey()
	release()

	lamports, ok := b.cachedBalance()
	if !ok {
		if b.cfg.RPC == nil {
			b.cfg.Guard.Deliver(ctx, userID, "Balance lookups are not available right now.")
			return
		}
		lamports, err = b.cfg.RPC.GetBalance(ctx, address)
		if err != nil {
			log.Printf("bot: user %d: balance: %v", userID, err)
			b.cfg.Guard.Deliver(ctx, userID, "Could not fetch your balance. Please try again later.")
			return
		}
	}

	b.cfg.Guard.Deliver(ctx, userID, fmt.Sprintf("Balance of %s:\n%s SOL", address, solana.FromLamports(lamports)))
}

func (b *Bot) cachedBalance() (uint64, bool) {
	if b.cfg.Watcher == nil {
		return 0, false
	}
	return b.cfg.Watcher.Balance()
}
