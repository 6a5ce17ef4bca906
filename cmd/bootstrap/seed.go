package main

import (
	"gorm.io/gorm"

	"story-engine-api/internal/domain/entity"
)

// seedDemoCampaign 写入演示剧本及其全部模板数据。
// 单事务执行，失败时整体回滚。
func seedDemoCampaign(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		campaign := &entity.Campaign{
			Code:        "iron_crown",
			Name:        "Shadow of the Iron Crown",
			Description: "A stolen crown, a city on the brink, and a traitor hiding in plain sight.",
			Tone:        entity.ToneMystery,
			Difficulty:  "normal",
			TotalActs:   2,
			IsActive:    true,
		}
		if err := tx.Create(campaign).Error; err != nil {
			return err
		}

		act1 := &entity.Act{
			CampaignID: campaign.ID,
			Number:     1,
			Title:      "The Theft",
			Objectives: []string{"Investigate the theft of the Iron Crown", "Earn the trust of the city watch"},
		}
		act2 := &entity.Act{
			CampaignID: campaign.ID,
			Number:     2,
			Title:      "The Reckoning",
			Objectives: []string{"Unmask the traitor", "Decide the fate of the crown"},
		}
		if err := tx.Create([]*entity.Act{act1, act2}).Error; err != nil {
			return err
		}

		ch1 := &entity.Chapter{
			ActID:       act1.ID,
			Number:      1,
			Title:       "Ashes at the Gate",
			KeyNPCCodes: []string{"captain_aldric", "mira"},
		}
		ch2 := &entity.Chapter{
			ActID:       act1.ID,
			Number:      2,
			Title:       "The Smugglers' Quarter",
			KeyNPCCodes: []string{"mira"},
		}
		ch3 := &entity.Chapter{
			ActID:       act2.ID,
			Number:      1,
			Title:       "The Iron Court",
			KeyNPCCodes: []string{"captain_aldric", "mira"},
		}
		if err := tx.Create([]*entity.Chapter{ch1, ch2, ch3}).Error; err != nil {
			return err
		}

		scene1 := &entity.Scene{
			ChapterID:        ch1.ID,
			SceneOrder:       1,
			Type:             entity.SceneNarrative,
			Title:            "The Empty Vault",
			OpeningNarration: "Smoke still hangs over the palace gate. The vault that held the Iron Crown for three centuries stands open, and empty.",
			AIContext:        "The party arrives as the watch seals the palace. Captain Aldric coordinates the investigation and steers suspicion toward the smugglers' quarter.",
			TensionLevel:     entity.TensionNormal,
			Objectives:       []string{"Examine the vault", "Speak with Captain Aldric"},
		}
		scene2 := &entity.Scene{
			ChapterID:          ch1.ID,
			SceneOrder:         2,
			Type:               entity.SceneDecision,
			Title:              "The Captured Courier",
			OpeningNarration:   "The watch drags a bleeding courier before you. He swears he only carried a sealed letter, and never asked for whom.",
			AIContext:          "The courier is innocent but carries a cult cipher he cannot read. His fate is in the party's hands.",
			SecretInstructions: "The letter is written in the cult's cipher. Aldric will try to confiscate it before anyone can study it.",
			TensionLevel:       entity.TensionElevated,
		}
		scene3 := &entity.Scene{
			ChapterID:        ch2.ID,
			SceneOrder:       1,
			Type:             entity.SceneSocial,
			Title:            "Mira's Den",
			OpeningNarration: "Lantern light and cheap wine. Mira, the smuggler queen, studies you from behind a card table that has ruined better men.",
			AIContext:        "Mira knows the crown never left the palace district. She trades information for favors, not coin.",
			TensionLevel:     entity.TensionNormal,
		}
		scene4 := &entity.Scene{
			ChapterID:          ch3.ID,
			SceneOrder:         1,
			Type:               entity.SceneRevelation,
			Title:              "The Cipher Breaks",
			OpeningNarration:   "The letters align at last, and the name they spell has been standing beside you since the first morning.",
			AIContext:          "All gathered clues point to Aldric. Let the revelation land through the players' own deductions.",
			SecretInstructions: "If the party has not yet connected Aldric to the cult, have the cipher expose the watch signet pressed into the wax.",
			TensionLevel:       entity.TensionHigh,
		}
		scene5 := &entity.Scene{
			ChapterID:        ch3.ID,
			SceneOrder:       2,
			Type:             entity.SceneCombat,
			Title:            "The Iron Court",
			OpeningNarration: "Beneath the throne room, the cult waits in a circle of cold iron. The crown sits on an altar no king ever blessed.",
			AIContext:        "The final confrontation. The tone of the ending depends on the party's standing with Aldric and Mira.",
			TensionLevel:     entity.TensionClimax,
		}
		if err := tx.Create([]*entity.Scene{scene1, scene2, scene3, scene4, scene5}).Error; err != nil {
			return err
		}

		// 场景默认推进与条件分支
		scene1.NextSceneDefault = scene2.ID
		scene2.NextSceneDefault = scene3.ID
		scene3.NextSceneDefault = scene4.ID
		scene3.BranchTriggers = []entity.BranchTrigger{
			{Conditions: []string{"flag:courier_executed", "karma<30"}, NextSceneID: scene5.ID},
		}
		scene4.NextSceneDefault = scene5.ID
		for _, s := range []*entity.Scene{scene1, scene2, scene3, scene4} {
			if err := tx.Save(s).Error; err != nil {
				return err
			}
		}

		decisions := []*entity.Decision{
			{
				SceneID:     scene2.ID,
				Code:        "courier_verdict",
				Title:       "The Courier's Fate",
				Description: "The watch waits for a word. The courier waits for a miracle.",
				Options: []entity.DecisionOption{
					{
						ID:               "spare",
						Label:            "Spare the courier",
						Description:      "Take custody of the letter and let him go.",
						KarmaEffect:      10,
						ConsequenceFlags: []string{"courier_spared", "has_cipher_letter"},
						NPCEffects:       map[string]int{"mira": 10, "captain_aldric": -5},
						NextSceneID:      0,
					},
					{
						ID:               "execute",
						Label:            "Hand him to the watch",
						Description:      "Let Captain Aldric deal with him, and with the letter.",
						KarmaEffect:      -15,
						ConsequenceFlags: []string{"courier_executed"},
						NPCEffects:       map[string]int{"captain_aldric": 10, "mira": -15},
					},
				},
				AffectsEnding: true,
				TimeoutTurns:  3,
				DefaultOption: "spare",
			},
			{
				SceneID:     scene4.ID,
				Code:        "crown_fate",
				Title:       "The Fate of the Iron Crown",
				Description: "The crown is within reach. So is the altar built to break it.",
				Options: []entity.DecisionOption{
					{
						ID:               "restore",
						Label:            "Return the crown to the throne",
						KarmaEffect:      15,
						ConsequenceFlags: []string{"crown_restored"},
					},
					{
						ID:               "destroy",
						Label:            "Shatter the crown on the altar",
						KarmaEffect:      -5,
						ConsequenceFlags: []string{"crown_destroyed"},
						NPCEffects:       map[string]int{"faction:city_watch": -20},
					},
				},
				AffectsEnding: true,
			},
			{
				SceneID:          scene3.ID,
				Code:             "smuggler_pact",
				Title:            "An Unspoken Bargain",
				Description:      "Mira decides the party has earned the truth about the palace district.",
				IsHidden:         true,
				HiddenConditions: []string{"flag:courier_spared", "karma>=55"},
				Options: []entity.DecisionOption{
					{
						ID:               "pact",
						Label:            "Mira shares what she knows",
						KarmaEffect:      0,
						ConsequenceFlags: []string{"mira_pact"},
						NPCEffects:       map[string]int{"mira": 15},
						UnlocksSideStory: "miras_ledger",
					},
				},
				DefaultOption: "pact",
			},
		}
		if err := tx.Create(decisions).Error; err != nil {
			return err
		}

		npcs := []*entity.NPC{
			{
				CampaignID:    campaign.ID,
				Code:          "captain_aldric",
				Name:          "Captain Aldric",
				ApparentRole:  "Captain of the City Watch",
				TrueRole:      "Cult Infiltrator",
				Description:   "A decorated veteran who has commanded the palace watch for a decade.",
				DialogueStyle: "Clipped, formal, never a wasted word.",
				Personality: entity.Personality{
					Cunning: 85, Loyalty: 20, Patience: 70, Pride: 60, Cruelty: 55,
					Compassion: 25, Courage: 65, Greed: 40, Honor: 30, Wisdom: 60,
				},
				Secrets:             []string{"Aldric sealed the vault himself the night of the theft.", "The cult promised Aldric the regency once the city falls."},
				SecretAgenda:        "Aldric steers the investigation away from the palace district and destroys evidence when he can do so unseen.",
				RelationshipDefault: 50,
				BetrayalThreshold:   35,
				RedemptionThreshold: 85,
				IsMajor:             true,
			},
			{
				CampaignID:    campaign.ID,
				Code:          "mira",
				Name:          "Mira",
				ApparentRole:  "Smuggler Queen",
				Description:   "Runs every unregistered cargo in the quarter and most of its secrets.",
				DialogueStyle: "Wry, unhurried, always bargaining.",
				Personality: entity.Personality{
					Cunning: 75, Loyalty: 60, Patience: 55, Pride: 50, Cruelty: 20,
					Compassion: 55, Courage: 70, Greed: 65, Honor: 55, Wisdom: 65,
				},
				Secrets:             []string{"Mira's crew saw the watch move crates into the undercroft the night of the theft."},
				RelationshipDefault: 40,
				IsMajor:             true,
			},
			{
				CampaignID:          campaign.ID,
				Code:                "brother_edwin",
				Name:                "Brother Edwin",
				ApparentRole:        "Palace Archivist",
				Description:         "Keeper of the crown's history, half-blind and wholly stubborn.",
				DialogueStyle:       "Rambling, scholarly, easily sidetracked.",
				Personality:         entity.DefaultPersonality(),
				RelationshipDefault: 55,
			},
		}
		if err := tx.Create(npcs).Error; err != nil {
			return err
		}

		clues := []*entity.Clue{
			{
				CampaignID:     campaign.ID,
				Code:           "vault_seal",
				Content:        "The vault seal was opened with the warden's own signet, not forced.",
				RelatedTwist:   "aldric_betrayal",
				ForeshadowHint: "The vault shows no sign of forced entry, which no one at the scene remarks upon.",
				RevealAct:      1,
				IsRequired:     true,
			},
			{
				CampaignID:     campaign.ID,
				Code:           "cipher_letter",
				Content:        "The courier's letter is written in the cult cipher and sealed with a watch signet.",
				RelatedTwist:   "aldric_betrayal",
				ForeshadowHint: "The wax seal on the letter looks oddly official for smugglers' work.",
				RevealAct:      2,
				IsRequired:     true,
			},
			{
				CampaignID:     campaign.ID,
				Code:           "undercroft_crates",
				Content:        "Watch crates were moved into the palace undercroft hours before the theft was reported.",
				RelatedTwist:   "aldric_betrayal",
				ForeshadowHint: "Dock hands mention night work for the watch that nobody logged.",
				RevealAct:      2,
			},
		}
		if err := tx.Create(clues).Error; err != nil {
			return err
		}

		karmaMin := 60
		endings := []*entity.Ending{
			{
				CampaignID:  campaign.ID,
				Code:        "crown_restored",
				Title:       "The Crown Restored",
				Description: "The Iron Crown returns to the throne and the city remembers who stood for it.",
				Requirements: entity.EndingRequirements{
					Flags:     []string{"crown_restored"},
					KarmaMin:  &karmaMin,
					Decisions: map[string]string{"courier_verdict": "spare"},
				},
				IsGoodEnding: true,
			},
			{
				CampaignID:  campaign.ID,
				Code:        "iron_regency",
				Title:       "The Iron Regency",
				Description: "The cult crowns its regent, and the watch enforces a colder law.",
				Requirements: entity.EndingRequirements{
					Decisions: map[string]string{"courier_verdict": "execute"},
				},
			},
			{
				CampaignID:  campaign.ID,
				Code:        "broken_circle",
				Title:       "The Broken Circle",
				Description: "The crown is gone, the cult scattered, and the city left to decide what it was loyal to.",
				Requirements: entity.EndingRequirements{
					Flags: []string{"crown_destroyed"},
				},
			},
		}
		return tx.Create(endings).Error
	})
}
