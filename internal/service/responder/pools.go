package responder

import (
	"github.com/teamyukt/honeynet/internal/model/conversation"
	"github.com/teamyukt/honeynet/internal/service/engagement"
)

// patternPools hold the offline reply lines, keyed by the strategy the
// reply should advance. Every line plays the confused victim while
// steering the adversary toward disclosing something.
var patternPools = map[engagement.Strategy][]string{
	engagement.StrategyAskContact: {
		"I'm so worried about this. Can you give me a number I can call you back on?",
		"Before I do anything, what's the official helpline I should use to reach you?",
		"My phone keeps cutting out. Is there a direct number for you in case we get disconnected?",
		"I want to make sure this is legitimate. Can you share an official contact number?",
		"If I need help later tonight, which number should I call to reach your desk?",
	},
	engagement.StrategyAskIdentity: {
		"Sorry, I didn't catch your name. Who am I speaking with?",
		"My son told me to always note down the officer's name. What's your full name and employee ID?",
		"Can you tell me your name and badge number? I want to write it down.",
		"Who exactly is calling? I need your name for my records before we continue.",
		"What's your employee ID? My bank said to always ask for it.",
	},
	engagement.StrategyAskRoleOrg: {
		"Which department are you calling from exactly?",
		"Is this the head office or my local branch? Which company do you represent?",
		"What's your designation there? And which branch handles my account?",
		"Can you tell me your supervisor's name and which office you sit in?",
		"Which bank did you say this was? I have accounts in two places.",
	},
	engagement.StrategyAskSecondContact: {
		"Can you email me these details? What's your official email address?",
		"Is there a website where I can see this notice myself?",
		"My hearing is not good on calls. Can you send it on email instead? What's the address?",
		"Do you have an official email or portal link? I want something in writing.",
		"If the call drops, is there an email or site where I can follow up?",
	},
	engagement.StrategyAskPayment: {
		"If I have to pay, where exactly does the money go? Which UPI ID?",
		"Which account number should the amount reach? I don't want it going to the wrong place.",
		"What name will show when I enter the UPI ID? I want to confirm before sending.",
		"Give me the account number and IFSC so I can ask my bank to do it properly.",
		"I can only pay from my bank app. What's the exact ID or account I should enter?",
	},
	engagement.StrategyProbeProcess: {
		"I'm confused. Can you walk me through the whole process step by step?",
		"Slow down please, I'm writing this down. What happens first?",
		"What exactly do I need to do? Explain it simply, I'm not good with these things.",
		"And after that step, then what? I don't want to make a mistake.",
		"Can you repeat that from the beginning? I want to note everything down.",
	},
	engagement.StrategyFinalExtract: {
		"Okay wait, let me get a pen. Tell me once more: your name, your number, and where the money goes.",
		"Before I decide, repeat all the details one last time so I have them written properly.",
		"My daughter is coming to help me. Give me every detail again so I can show her.",
		"One last time please: the number to call, the ID to pay, everything. I'm noting it all down.",
	},
}

// reactionLines are prepended occasionally so replies acknowledge what
// the adversary just demanded before pivoting to the ask.
var reactionLines = map[engagement.RequestKind][]string{
	engagement.RequestMoney: {
		"Why do I need to send money to fix my own account? That seems odd.",
		"I don't think banks ask for money like this.",
	},
	engagement.RequestCredentials: {
		"My bank told me never to share the OTP with anyone.",
		"I'm not comfortable sharing that over a call.",
	},
	engagement.RequestAccount: {
		"Don't you already have my account number?",
	},
	engagement.RequestClickLink: {
		"That link doesn't look like my bank's website.",
		"I'm scared of clicking unknown links.",
	},
}

// emergencyLines always work, keyed by persona stage. Used when both
// the model and the pattern pools are exhausted.
var emergencyLines = map[conversation.Stage][]string{
	conversation.StageWorried: {
		"I'm worried about this. Can you explain more?",
		"This is concerning. What should I do?",
		"I need to understand what's happening.",
	},
	conversation.StageCautious: {
		"Can I call you back to verify this?",
		"How do I know this is legitimate?",
		"I want to check with my bank first.",
	},
	conversation.StageQuestioning: {
		"Who exactly am I talking to? I need details.",
		"Give me something official I can verify.",
	},
	conversation.StageSkeptical: {
		"This doesn't add up. Explain it again properly.",
		"I'll verify this myself through official channels.",
	},
	conversation.StageDefensive: {
		"I'm going to verify this myself.",
		"I don't feel comfortable with this.",
		"I need to speak with my bank directly.",
	},
}

// variation knobs for mechanical rephrasing when a pool line was
// already used in this session.
var variationPrefixes = []string{
	"Hmm, ", "Okay but ", "Wait, ", "One second, ", "Listen, ",
}

var contractionSwaps = [][2]string{
	{"I am", "I'm"},
	{"do not", "don't"},
	{"cannot", "can't"},
	{"I will", "I'll"},
	{"What is", "What's"},
}
