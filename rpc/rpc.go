package rpc

import (
	"net"
	"net/rpc"

	"github.com/wfunc/drawguess/logger"
	"github.com/wfunc/drawguess/models"
	"github.com/wfunc/drawguess/services"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server listening on addr. Services are
// registered by the caller via net/rpc before Start.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// AccountService exposes the user-account collaborator over net/rpc for
// the lobby frontends. Exported methods follow the net/rpc signature.
type AccountService struct {
	userService *services.UserService
}

func NewAccountService(us *services.UserService) *AccountService {
	return &AccountService{userService: us}
}

type RegisterArgs struct {
	Account  string
	Name     string
	Password string
	Sex      int
	PicPath  string
}

type RegisterReply struct {
	OK bool
}

func (a *AccountService) Register(args *RegisterArgs, reply *RegisterReply) error {
	if err := a.userService.Register(args.Account, args.Name, args.Password, args.Sex, args.PicPath); err != nil {
		return err
	}
	reply.OK = true
	return nil
}

type ProfileArgs struct {
	Account string
}

type ProfileReply struct {
	User *models.GormUser
}

func (a *AccountService) Profile(args *ProfileArgs, reply *ProfileReply) error {
	user, err := a.userService.Profile(args.Account)
	if err != nil {
		return err
	}
	reply.User = user
	return nil
}
