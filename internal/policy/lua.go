package policy

import (
	"errors"
	"fmt"
	"os"
	"sync"

	lua "github.com/Shopify/go-lua"
	"go.uber.org/zap"

	"github.com/magefree/monopoly-server-go/internal/game/board"
	"github.com/magefree/monopoly-server-go/internal/game/player"
)

const (
	luaShouldBuy     = "should_buy"
	luaEvaluateTrade = "evaluate_trade"
	luaHelperTable   = "monopoly"
)

// ErrScriptMissingFunction is returned when a policy script does not define
// one of the required entry points.
var ErrScriptMissingFunction = errors.New("policy script missing function")

// LuaPolicy delegates decisions to a Lua script that defines
//
//	should_buy(player, price, balance) -> boolean
//	evaluate_trade(trade) -> boolean
//
// A script error falls back to the Heuristic for that one decision.
type LuaPolicy struct {
	mu       sync.Mutex
	state    *lua.State
	logger   *zap.Logger
	fallback Policy
}

// LoadLuaPolicy reads a script from disk.
func LoadLuaPolicy(path string, logger *zap.Logger) (*LuaPolicy, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy script: %w", err)
	}
	return NewLuaPolicy(string(source), logger)
}

// NewLuaPolicy compiles and runs source, then checks the entry points exist.
func NewLuaPolicy(source string, logger *zap.Logger) (*LuaPolicy, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &LuaPolicy{
		state:    lua.NewState(),
		logger:   logger,
		fallback: Heuristic{},
	}
	lua.OpenLibraries(p.state)
	p.registerHelpers()

	if err := lua.DoString(p.state, source); err != nil {
		return nil, fmt.Errorf("load policy script: %w", err)
	}
	for _, name := range []string{luaShouldBuy, luaEvaluateTrade} {
		p.state.Global(name)
		ok := p.state.IsFunction(-1)
		p.state.Pop(1)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrScriptMissingFunction, name)
		}
	}
	return p, nil
}

func (p *LuaPolicy) registerHelpers() {
	p.state.NewTable()
	lua.SetFunctions(p.state, []lua.RegistryFunction{
		{Name: "log", Function: func(state *lua.State) int {
			p.logger.Info("policy script", zap.String("message", lua.CheckString(state, 1)))
			return 0
		}},
	}, 0)
	p.state.SetGlobal(luaHelperTable)
}

// ShouldBuy calls should_buy(player, price, balance).
func (p *LuaPolicy) ShouldBuy(pl *player.Player, price, balance int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state.Global(luaShouldBuy)
	pushPlayer(p.state, pl)
	p.state.PushInteger(price)
	p.state.PushInteger(balance)
	answer, err := p.call(3)
	if err != nil {
		p.logger.Warn("should_buy failed, using heuristic",
			zap.String("player", pl.Name),
			zap.Int("price", price),
			zap.Error(err))
		return p.fallback.ShouldBuy(pl, price, balance)
	}
	return answer
}

// EvaluateTrade calls evaluate_trade(trade).
func (p *LuaPolicy) EvaluateTrade(t TradeProposal) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state.Global(luaEvaluateTrade)
	pushTrade(p.state, t)
	answer, err := p.call(1)
	if err != nil {
		p.logger.Warn("evaluate_trade failed, using heuristic", zap.Error(err))
		return p.fallback.EvaluateTrade(t)
	}
	return answer
}

func (p *LuaPolicy) call(args int) (bool, error) {
	if err := p.state.ProtectedCall(args, 1, 0); err != nil {
		p.state.SetTop(0)
		return false, err
	}
	defer p.state.Pop(1)
	if !p.state.IsBoolean(-1) {
		return false, fmt.Errorf("expected boolean result, got %s", lua.TypeNameOf(p.state, -1))
	}
	return p.state.ToBoolean(-1), nil
}

func pushPlayer(state *lua.State, pl *player.Player) {
	state.NewTable()
	if pl == nil {
		return
	}
	state.PushString(pl.Name)
	state.SetField(-2, "name")
	state.PushInteger(pl.Balance)
	state.SetField(-2, "balance")
	state.PushInteger(pl.Position)
	state.SetField(-2, "position")
	state.PushInteger(pl.Railroads)
	state.SetField(-2, "railroads")
	state.PushBoolean(pl.InJail)
	state.SetField(-2, "in_jail")
	pushSpaces(state, pl.Properties())
	state.SetField(-2, "properties")
}

func pushSpaces(state *lua.State, spaces []*board.Space) {
	state.NewTable()
	for i, space := range spaces {
		state.NewTable()
		state.PushString(space.Name)
		state.SetField(-2, "name")
		state.PushString(space.Group)
		state.SetField(-2, "group")
		state.PushInteger(space.Price)
		state.SetField(-2, "price")
		state.PushBoolean(space.Mortgaged)
		state.SetField(-2, "mortgaged")
		state.RawSetInt(-2, i+1)
	}
}

func pushTrade(state *lua.State, t TradeProposal) {
	state.NewTable()
	pushPlayer(state, t.Proposer)
	state.SetField(-2, "proposer")
	pushPlayer(state, t.Recipient)
	state.SetField(-2, "recipient")
	state.PushInteger(t.OfferedCash)
	state.SetField(-2, "offered_cash")
	state.PushInteger(t.WantedCash)
	state.SetField(-2, "wanted_cash")
	state.PushInteger(t.OfferedValue())
	state.SetField(-2, "offered_value")
	state.PushInteger(t.WantedValue())
	state.SetField(-2, "wanted_value")
	pushSpaces(state, t.Offered)
	state.SetField(-2, "offered")
	pushSpaces(state, t.Wanted)
	state.SetField(-2, "wanted")
}
