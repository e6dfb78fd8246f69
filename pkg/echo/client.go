package echo

import (
	"context"
	"crypto/ed25519"
	"strconv"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/harshasomisetty/solana-bootcamp/pkg/cache"
	"github.com/harshasomisetty/solana-bootcamp/pkg/solana"
	echoprogram "github.com/harshasomisetty/solana-bootcamp/pkg/solana/echo"
	"github.com/harshasomisetty/solana-bootcamp/pkg/solana/system"
)

// Result describes the outcome of a flow. Data is the raw account data read
// back after confirmation and Payload is the message region within it.
type Result struct {
	Signature solana.Signature
	Address   ed25519.PublicKey
	Bump      uint8
	Data      []byte
	Payload   []byte
}

// Client runs the end to end echo flows against a deployed echo program.
type Client struct {
	log     *logrus.Entry
	conf    *conf
	program ed25519.PublicKey

	ledger Ledger
	driver *Driver
	reader *Reader

	rentCache cache.Cache
}

func NewClient(ledger Ledger, program ed25519.PublicKey, configProvider ConfigProvider) *Client {
	cfg := configProvider()

	return &Client{
		log:     logrus.StandardLogger().WithField("type", "echo/client"),
		conf:    cfg,
		program: program,
		ledger:  ledger,
		driver: NewDriver(ledger, func() *conf {
			return cfg
		}),
		reader:    NewReader(ledger),
		rentCache: cache.NewCache(int(cfg.rentCacheBudget.Get(context.Background()))),
	}
}

// Program returns the echo program the client targets.
func (c *Client) Program() ed25519.PublicKey {
	return c.program
}

// Fund requests test funds for account and waits for the airdrop to reach the
// session's commitment. A zero amount uses the configured default.
func (c *Client) Fund(ctx context.Context, session *Session, account ed25519.PublicKey, lamports uint64) (*Result, error) {
	if lamports == 0 {
		lamports = c.conf.airdropLamports.Get(ctx)
	}

	log := c.log.WithFields(logrus.Fields{
		"method":   "Fund",
		"session":  session.ID.String(),
		"account":  base58.Encode(account),
		"lamports": lamports,
	})

	sig, err := c.ledger.RequestAirdrop(account, lamports, session.Commitment)
	if err != nil {
		log.WithError(err).Warn("failure requesting airdrop")
		return nil, errors.Wrap(err, "failed to request airdrop")
	}

	if err := c.driver.AwaitSignature(ctx, session, sig); err != nil {
		return nil, err
	}

	log.WithField("signature", sig.String()).Debug("airdrop confirmed")
	return &Result{
		Signature: sig,
		Address:   account,
	}, nil
}

// EchoDirect creates a fresh buffer account sized to message and echoes the
// message into it within a single transaction.
func (c *Client) EchoDirect(ctx context.Context, session *Session, message []byte) (*Result, error) {
	bufferPublic, bufferPrivate, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate buffer account")
	}

	size := uint64(len(message))
	lamports, err := c.minimumBalance(size)
	if err != nil {
		return nil, err
	}

	echoIxn, err := echoprogram.NewEchoInstruction(
		&echoprogram.EchoInstructionAccounts{
			Program: c.program,
			Buffer:  bufferPublic,
		},
		&echoprogram.EchoInstructionArgs{
			Data: message,
		},
	)
	if err != nil {
		return nil, err
	}

	txn, err := NewTransaction(
		session.FeePayerAddress(),
		[]ed25519.PrivateKey{session.FeePayer, bufferPrivate},
		system.CreateAccount(session.FeePayerAddress(), bufferPublic, c.program, lamports, size),
		echoIxn,
	)
	if err != nil {
		return nil, err
	}

	sig, err := c.driver.Submit(ctx, session, txn)
	if err != nil {
		return nil, err
	}

	data, err := c.reader.ReadBack(ctx, bufferPublic, session.Commitment)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Signature: sig,
		Address:   bufferPublic,
		Data:      data,
		Payload:   data,
	}
	return result, VerifyEcho(message, data)
}

// InitializeAuthorizedBuffer creates the buffer derived from the authority and
// seed, with room for messages of up to maxMessageLength bytes.
func (c *Client) InitializeAuthorizedBuffer(ctx context.Context, session *Session, authority ed25519.PrivateKey, seed, maxMessageLength uint64) (*Result, error) {
	address, bump, err := c.AuthorizedBufferAddress(authority.Public().(ed25519.PublicKey), seed)
	if err != nil {
		return nil, err
	}

	initIxn, err := c.initializeInstruction(authority, address, seed, maxMessageLength)
	if err != nil {
		return nil, err
	}

	return c.submitAuthorized(ctx, session, authority, address, bump, nil, initIxn)
}

// WriteAuthorizedBuffer echoes message into an existing authorized buffer.
func (c *Client) WriteAuthorizedBuffer(ctx context.Context, session *Session, authority ed25519.PrivateKey, seed uint64, message []byte) (*Result, error) {
	address, bump, err := c.AuthorizedBufferAddress(authority.Public().(ed25519.PublicKey), seed)
	if err != nil {
		return nil, err
	}

	writeIxn, err := c.writeInstruction(authority, address, message)
	if err != nil {
		return nil, err
	}

	return c.submitAuthorized(ctx, session, authority, address, bump, message, writeIxn)
}

// EchoAuthorized initializes an authorized buffer sized to message and writes
// message into it within a single transaction.
func (c *Client) EchoAuthorized(ctx context.Context, session *Session, authority ed25519.PrivateKey, seed uint64, message []byte) (*Result, error) {
	address, bump, err := c.AuthorizedBufferAddress(authority.Public().(ed25519.PublicKey), seed)
	if err != nil {
		return nil, err
	}

	initIxn, err := c.initializeInstruction(authority, address, seed, uint64(len(message)))
	if err != nil {
		return nil, err
	}

	writeIxn, err := c.writeInstruction(authority, address, message)
	if err != nil {
		return nil, err
	}

	return c.submitAuthorized(ctx, session, authority, address, bump, message, initIxn, writeIxn)
}

// AuthorizedBufferAddress derives the authorized buffer address for the
// authority and seed under the client's program.
func (c *Client) AuthorizedBufferAddress(authority ed25519.PublicKey, seed uint64) (ed25519.PublicKey, uint8, error) {
	return echoprogram.GetAuthorizedBufferAddress(&echoprogram.GetAuthorizedBufferAddressArgs{
		Program:    c.program,
		Authority:  authority,
		BufferSeed: seed,
	})
}

// Read returns the raw data held by any buffer account.
func (c *Client) Read(ctx context.Context, session *Session, address ed25519.PublicKey) (*Result, error) {
	data, err := c.reader.ReadBack(ctx, address, session.Commitment)
	if err != nil {
		return nil, err
	}

	return &Result{
		Address: address,
		Data:    data,
		Payload: data,
	}, nil
}

// ReadAuthorized returns the decoded authorized buffer for the authority and seed.
func (c *Client) ReadAuthorized(ctx context.Context, session *Session, authority ed25519.PublicKey, seed uint64) (*Result, error) {
	address, bump, err := c.AuthorizedBufferAddress(authority, seed)
	if err != nil {
		return nil, err
	}

	buffer, err := c.reader.ReadAuthorizedBuffer(ctx, c.program, address, session.Commitment)
	if err != nil {
		return nil, err
	}

	return &Result{
		Address: address,
		Bump:    bump,
		Data:    buffer.Data,
		Payload: buffer.Payload(),
	}, nil
}

func (c *Client) initializeInstruction(authority ed25519.PrivateKey, address ed25519.PublicKey, seed, maxMessageLength uint64) (solana.Instruction, error) {
	size, err := echoprogram.AuthorizedBufferSize(maxMessageLength)
	if err != nil {
		return solana.Instruction{}, err
	}

	return echoprogram.NewInitializeAuthorizedEchoInstruction(
		&echoprogram.InitializeAuthorizedEchoInstructionAccounts{
			Program:          c.program,
			AuthorizedBuffer: address,
			Authority:        authority.Public().(ed25519.PublicKey),
		},
		&echoprogram.InitializeAuthorizedEchoInstructionArgs{
			BufferSeed: seed,
			BufferSize: size,
		},
	), nil
}

func (c *Client) writeInstruction(authority ed25519.PrivateKey, address ed25519.PublicKey, message []byte) (solana.Instruction, error) {
	return echoprogram.NewAuthorizedEchoInstruction(
		&echoprogram.AuthorizedEchoInstructionAccounts{
			Program:          c.program,
			AuthorizedBuffer: address,
			Authority:        authority.Public().(ed25519.PublicKey),
		},
		&echoprogram.AuthorizedEchoInstructionArgs{
			Data: message,
		},
	)
}

// submitAuthorized submits the instructions and reads the authorized buffer
// back. A nil message skips verification of the payload.
func (c *Client) submitAuthorized(
	ctx context.Context,
	session *Session,
	authority ed25519.PrivateKey,
	address ed25519.PublicKey,
	bump uint8,
	message []byte,
	instructions ...solana.Instruction,
) (*Result, error) {
	txn, err := NewTransaction(
		session.FeePayerAddress(),
		[]ed25519.PrivateKey{session.FeePayer, authority},
		instructions...,
	)
	if err != nil {
		return nil, err
	}

	sig, err := c.driver.Submit(ctx, session, txn)
	if err != nil {
		return nil, err
	}

	buffer, err := c.reader.ReadAuthorizedBuffer(ctx, c.program, address, session.Commitment)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Signature: sig,
		Address:   address,
		Bump:      bump,
		Data:      buffer.Data,
		Payload:   buffer.Payload(),
	}
	if message != nil {
		result.Payload = buffer.Message(len(message))
	}

	if buffer.BumpSeed != bump {
		return result, errors.Errorf("buffer bump seed %d does not match derived bump %d", buffer.BumpSeed, bump)
	}
	if message == nil {
		return result, nil
	}
	return result, VerifyEcho(message, buffer.Data)
}

func (c *Client) minimumBalance(size uint64) (uint64, error) {
	key := strconv.FormatUint(size, 10)
	if cached, ok := c.rentCache.Retrieve(key); ok {
		return cached.(uint64), nil
	}

	lamports, err := c.ledger.GetMinimumBalanceForRentExemption(size)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to get rent exempt balance for %d bytes", size)
	}

	// Concurrent lookups for the same size may race to insert.
	_ = c.rentCache.Insert(key, lamports, 1)
	return lamports, nil
}
