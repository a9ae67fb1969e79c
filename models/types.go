package models

import "time"

// Role constants
const (
	RoleVoter = "voter"
	RoleAdmin = "admin"
)

// Sex constants
const (
	SexMale   = "Male"
	SexFemale = "Female"
	SexOther  = "Other"
)

// Relation constants (son of, wife of, daughter of)
const (
	RelationSonOf      = "S/O"
	RelationWifeOf     = "W/O"
	RelationDaughterOf = "D/O"
)

// Result labels used by DeclareResult
const (
	ResultWinner         = "Winner Declared"
	ResultTie            = "Tie"
	ResultNoParticipants = "No candidates participated."
)

// MinVotingAge is the minimum age on the day of the vote
const MinVotingAge = 18

// Request types

type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

type Relative struct {
	RelationType string `json:"relationType"`
	RelativeName string `json:"relativeName"`
}

type SignupRequest struct {
	Name         string   `json:"name"`
	Age          int      `json:"age"`
	Email        string   `json:"email"`
	Password     string   `json:"password"`
	Phone        string   `json:"phone"`
	Address      Address  `json:"address"`
	Sex          string   `json:"sex"`
	Relative     Relative `json:"relative"`
	NationalID   string   `json:"nationalId"`
	Role         string   `json:"role"`
	ProfilePhoto string   `json:"profilePhoto"`
	DOB          string   `json:"dob"` // YYYY-MM-DD or RFC3339
}

type LoginRequest struct {
	NationalID string `json:"nationalId"`
	Password   string `json:"password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type CandidateRequest struct {
	Name  string `json:"name"`
	Party string `json:"party"`
	Age   int    `json:"age"`
}

type CreateElectionRequest struct {
	Title          string   `json:"title"`
	DateOfElection string   `json:"dateOfElection"`
	Parties        []string `json:"parties"` // candidate IDs
}

// Nil fields are left unchanged
type UpdateElectionRequest struct {
	Title          *string `json:"title"`
	DateOfElection *string `json:"dateOfElection"`
}

type CastVoteRequest struct {
	CandidateID string `json:"candidateId"`
}

// Response types

type AuthResponse struct {
	Message string `json:"message,omitempty"`
	Token   string `json:"token"`
	User    Voter  `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type CastVoteResponse struct {
	Message     string    `json:"message"`
	ElectionID  string    `json:"electionId"`
	CandidateID string    `json:"candidateId"`
	CastAt      time.Time `json:"castAt"`
}

type CandidateVoteResponse struct {
	Message   string    `json:"message"`
	Candidate Candidate `json:"candidate"`
}

// Domain types

type Voter struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Age          int        `json:"age"`
	Email        *string    `json:"email"`
	PasswordHash string     `json:"-"` // Never expose in JSON
	Phone        string     `json:"phone"`
	Address      Address    `json:"address"`
	Sex          string     `json:"sex"`
	Relative     Relative   `json:"relative"`
	NationalID   string     `json:"nationalId"`
	Role         string     `json:"role"`
	HasVoted     bool       `json:"hasVoted"`
	IsVerified   bool       `json:"isVerified"`
	DOB          *time.Time `json:"dob,omitempty"`
	ProfilePhoto string     `json:"profilePhoto"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type Candidate struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Party     string    `json:"party"`
	Age       int       `json:"age"`
	Image     string    `json:"image,omitempty"`
	ImageKey  string    `json:"imagePublicId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// CandidateRef is the populated candidate inside an election.
// Nil when the candidate has been deleted.
type CandidateRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Party string `json:"party"`
	Image string `json:"image,omitempty"`
}

type Participation struct {
	CandidateID string        `json:"candidateId"`
	Candidate   *CandidateRef `json:"candidate"`
	VoteCount   int           `json:"voteCount"`
}

type Election struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	DateOfElection time.Time       `json:"dateOfElection"`
	CreatedAt      time.Time       `json:"createdAt"`
	Parties        []Participation `json:"parties"`
}

// VoteRecord is one ballot joined with what reports need about it
type VoteRecord struct {
	VoterID     string    `json:"voterId"`
	CandidateID string    `json:"candidateId"`
	Party       string    `json:"party,omitempty"` // empty when the candidate no longer exists
	VoterState  string    `json:"voterState,omitempty"`
	CastAt      time.Time `json:"castAt"`
}

// Report types

type CandidateTally struct {
	CandidateID string `json:"id"`
	Name        string `json:"name"`
	Party       string `json:"party"`
	Count       int    `json:"count"`
}

type ParticipantResult struct {
	CandidateID string `json:"candidateId"`
	Name        string `json:"name"`
	Party       string `json:"party"`
	VoteCount   int    `json:"voteCount"`
}

type ElectionResult struct {
	ElectionID     string              `json:"electionId"`
	Title          string              `json:"title"`
	DateOfElection time.Time           `json:"dateOfElection"`
	Result         string              `json:"result"`
	TotalVotes     int                 `json:"totalVotesCasted"`
	Winner         *ParticipantResult  `json:"winner,omitempty"`
	TiedWinners    []ParticipantResult `json:"tiedWinners,omitempty"`
	Participants   []ParticipantResult `json:"participants"`
}

type AuditVoter struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	NationalID   string     `json:"nationalId"`
	ProfilePhoto string     `json:"profilePhoto"`
	DOB          *time.Time `json:"dob,omitempty"`
	Address      Address    `json:"address"`
	IsVerified   bool       `json:"isVerified"`
	Sex          string     `json:"sex"`
	Relative     Relative   `json:"relative"`
}

type AuditReport struct {
	ElectionID     string              `json:"id"`
	Title          string              `json:"title"`
	DateOfElection time.Time           `json:"dateOfElection"`
	TotalVotes     int                 `json:"totalVotes"`
	Participants   []ParticipantResult `json:"participants"`
	Voters         []AuditVoter        `json:"voters"`
}

type PartyVotes struct {
	Party string `json:"party"`
	Votes int    `json:"votes"`
}

type StateBreakdown struct {
	State        string       `json:"state"`
	Results      []PartyVotes `json:"results"`
	TotalVotes   int          `json:"totalVotes"`
	WinningParty string       `json:"winningParty"`
}

// Error response

type ErrorResponse struct {
	Error string `json:"error"`
}
